// internal/transport/telegram/queue.go
package telegram

import "sync"

// chatQueue runs the jobs of one chat strictly in submission order, while
// jobs of different chats run in parallel. A chat's worker goroutine is
// started on its first job and exits once its backlog is empty.
type chatQueue struct {
	mu      sync.Mutex
	pending map[int64][]func()
	wg      sync.WaitGroup
}

func newChatQueue() *chatQueue {
	return &chatQueue{pending: make(map[int64][]func())}
}

// Submit appends job to the backlog of chatID.
func (q *chatQueue) Submit(chatID int64, job func()) {
	q.mu.Lock()
	backlog, running := q.pending[chatID]
	q.pending[chatID] = append(backlog, job)
	if !running {
		q.wg.Add(1)
	}
	q.mu.Unlock()

	if !running {
		go q.drain(chatID)
	}
}

// drain owns chatID while its key is present in pending.
func (q *chatQueue) drain(chatID int64) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		backlog := q.pending[chatID]
		if len(backlog) == 0 {
			delete(q.pending, chatID)
			q.mu.Unlock()
			return
		}
		job := backlog[0]
		backlog[0] = nil
		q.pending[chatID] = backlog[1:]
		q.mu.Unlock()

		job()
	}
}

// Wait blocks until every submitted job has finished.
func (q *chatQueue) Wait() {
	q.wg.Wait()
}
