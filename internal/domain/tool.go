package domain

// Tool is an external executable the probe depends on. Elevated tools are
// started through the elevation wrapper, so only their execute bits matter;
// every other tool must be runnable by the probe's own user.
type Tool struct {
	Path     string
	Elevated bool
}
