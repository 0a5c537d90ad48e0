package throughput

import (
	"encoding/json"
	"sync"
	"time"
)

const interval time.Duration = time.Second

// Throughput accumulates a per-second series of counts in one direction of a
// connection. The series advances on an internal goroutine, which exits when
// the owning connection's done channel closes; mu covers every field the
// digest serializes so String can be called on a live connection.
type Throughput struct {
	unit      string
	count     int
	workQueue chan int
	resetChan chan bool

	mu    sync.Mutex
	Total int       `json:"total"`
	Start time.Time `json:"start"`
	Stop  time.Time `json:"stop"`
	Data  []int     `json:"data"`
}

func New(unit string, done <-chan struct{}) *Throughput {
	t := Throughput{
		unit:      unit,
		workQueue: make(chan int, 15),
		resetChan: make(chan bool),
		Start:     time.Now(),
		Stop:      time.Now(),
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				t.mu.Lock()
				t.Stop = time.Now().UTC()
				t.Total += t.count
				t.Data = append(t.Data, t.count)
				t.mu.Unlock()

				// empty out our current window
				t.count = 0
			case e := <-t.workQueue:
				t.count += e
			case <-t.resetChan:
				t.count = 0
				t.mu.Lock()
				t.Total = 0
				t.Start = time.Now().UTC()
				t.Stop = time.Now().UTC()
				t.Data = []int{}
				t.mu.Unlock()
			}
		}
	}()

	return &t
}

func (t *Throughput) Count(n int) {
	// Drop the observation rather than stall a transport hot path when the
	// collector is behind
	select {
	case t.workQueue <- n:
	default:
	}
}

func (t *Throughput) Reset() {
	t.resetChan <- true
}

func (t *Throughput) String() json.RawMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	digest, err := json.Marshal(t)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return digest
}
