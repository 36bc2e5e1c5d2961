package persist

import (
	"errors"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// DefaultQueueSize 是未显式配置时后台写入队列的容量。
const DefaultQueueSize = 256

// ErrDispatcherFull 表示待执行队列已满，任务被丢弃。
var ErrDispatcherFull = errors.New("dispatcher queue full")

// Dispatcher 在有界 goroutine 池中执行后台写入。Submit 从不阻塞：
// 任务先进入有界队列，由单个 feeder 转交给池；队列满时直接拒绝。
type Dispatcher struct {
	mu     sync.RWMutex
	closed bool
	queue  chan func()
	done   chan struct{}
	pool   *pool.Pool
}

// NewDispatcher 构建最多 maxWorkers 个并发 worker 的 Dispatcher，0 表示不设上限；
// queueSize <= 0 时使用 DefaultQueueSize。
func NewDispatcher(maxWorkers, queueSize int) *Dispatcher {
	p := pool.New()
	if maxWorkers > 0 {
		p = p.WithMaxGoroutines(maxWorkers)
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	d := &Dispatcher{
		queue: make(chan func(), queueSize),
		done:  make(chan struct{}),
		pool:  p,
	}
	go d.feed()
	return d
}

// feed 把排队任务交给池；池满时只有这里阻塞。队列关闭后等待所有任务结束。
func (d *Dispatcher) feed() {
	defer close(d.done)
	for job := range d.queue {
		d.pool.Go(job)
	}
	d.pool.Wait()
}

// Submit 提交一个后台任务，任务结果只能通过日志观察。
// 已关闭返回 ErrDispatcherClosed，队列已满返回 ErrDispatcherFull。
func (d *Dispatcher) Submit(job func()) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- job:
		return nil
	default:
		return ErrDispatcherFull
	}
}

// Close 拒绝新的任务并等待已排队与执行中的任务完成，可重复调用。
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	<-d.done
}
