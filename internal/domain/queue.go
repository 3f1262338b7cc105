package domain

// состояние очереди печати

type QueueState string

const (
	QueueStateReady QueueState = "READY"
	QueueStateDown  QueueState = "DOWN"
	QueueStateOther QueueState = "OTHER"
)

type QueueObservation struct {
	Queue string     `json:"queue"`
	State QueueState `json:"state"`
}

// Tally накапливает наблюдения за один запуск.
// Значения только растут, порядок DownQueues совпадает с порядком обнаружения.
type Tally struct {
	Ready      int      `json:"ready"`
	Down       int      `json:"down"`
	DownQueues []string `json:"down_queues"`
	QueuedJobs int      `json:"queued_jobs"`
}

// Observe учитывает одно наблюдение. Other не попадает ни в один счётчик.
func (t *Tally) Observe(obs QueueObservation) {
	switch obs.State {
	case QueueStateReady:
		t.Ready++
	case QueueStateDown:
		t.Down++
		t.DownQueues = append(t.DownQueues, obs.Queue)
	}
}

// Add складывает два счётчика. Очереди other дописываются после очередей t.
func (t Tally) Add(other Tally) Tally {
	sum := Tally{
		Ready:      t.Ready + other.Ready,
		Down:       t.Down + other.Down,
		QueuedJobs: t.QueuedJobs + other.QueuedJobs,
	}
	if len(t.DownQueues)+len(other.DownQueues) > 0 {
		sum.DownQueues = make([]string, 0, len(t.DownQueues)+len(other.DownQueues))
		sum.DownQueues = append(sum.DownQueues, t.DownQueues...)
		sum.DownQueues = append(sum.DownQueues, other.DownQueues...)
	}
	return sum
}
