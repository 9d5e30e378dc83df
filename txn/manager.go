package txn

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dnscore-go/dnscore/dnsmsg"
	"github.com/dnscore-go/dnscore/dnsname"
	"github.com/dnscore-go/dnscore/zone"
)

// CheckPutRdatasetFunc vetoes a pending Add/Replace by returning a non-nil
// error.
type CheckPutRdatasetFunc func(tx *Transaction, name dnsname.Name, ds *zone.Rdataset) error

// CheckDeleteRdatasetFunc vetoes a pending Delete/DeleteExact.
type CheckDeleteRdatasetFunc func(tx *Transaction, name dnsname.Name, typ, covers dnsmsg.Type) error

// CheckDeleteNameFunc vetoes a pending DeleteName.
type CheckDeleteNameFunc func(tx *Transaction, name dnsname.Name) error

// Manager owns a versioned zone: one atomically-published current Version,
// a mutex serializing writer admission, and a retained history of
// superseded versions trimmed by a PruningPolicy on every commit.
type Manager struct {
	mu      sync.Mutex // held for the lifetime of the open writer Transaction
	current atomic.Pointer[Version]
	seq     uint64 // atomic; next Version.Seq

	pruning PruningPolicy

	historyMu sync.Mutex
	history   []*Version // superseded, oldest first

	metrics *metrics

	hooksMu             sync.Mutex
	checkPutRdataset    []CheckPutRdatasetFunc
	checkDeleteRdataset []CheckDeleteRdatasetFunc
	checkDeleteName     []CheckDeleteNameFunc
}

// NewManager returns a Manager whose first Version wraps z. z must not be
// mutated by the caller afterward; ownership passes to the Manager.
func NewManager(z *zone.Zone) *Manager {
	m := &Manager{
		pruning: DefaultPruningPolicy,
		metrics: newMetrics(z.Origin.String()),
	}
	m.current.Store(newVersion(z, 0))
	return m
}

// SetPruningPolicy replaces the policy consulted after every commit.
func (m *Manager) SetPruningPolicy(p PruningPolicy) {
	if p == nil {
		p = DefaultPruningPolicy
	}
	m.pruning = p
}

// AddCheckPutRdataset registers a veto hook run before every Add/Replace.
func (m *Manager) AddCheckPutRdataset(fn CheckPutRdatasetFunc) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.checkPutRdataset = append(m.checkPutRdataset, fn)
}

// AddCheckDeleteRdataset registers a veto hook run before every
// Delete/DeleteExact.
func (m *Manager) AddCheckDeleteRdataset(fn CheckDeleteRdatasetFunc) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.checkDeleteRdataset = append(m.checkDeleteRdataset, fn)
}

// AddCheckDeleteName registers a veto hook run before every DeleteName.
func (m *Manager) AddCheckDeleteName(fn CheckDeleteNameFunc) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.checkDeleteName = append(m.checkDeleteName, fn)
}

// Metrics returns the collectors a caller should register with their own
// prometheus.Registerer (nothing is registered implicitly, so multiple
// Managers in one process never collide on metric names).
func (m *Manager) Metrics() []prometheus.Collector {
	return m.metrics.Collectors()
}

// Current returns the currently published Version without retaining it;
// callers wanting a stable snapshot should open a Reader transaction
// instead.
func (m *Manager) Current() *Version {
	return m.current.Load()
}

// History returns a snapshot of the superseded versions still retained by
// the pruning policy, oldest first.
func (m *Manager) History() []*Version {
	m.historyMu.Lock()
	defer m.historyMu.Unlock()
	out := make([]*Version, len(m.history))
	copy(out, m.history)
	return out
}

// Reader opens a read-only Transaction pinned to the currently published
// Version. Many readers may be open concurrently; opening one never
// blocks on a writer.
func (m *Manager) Reader() *Transaction {
	v := m.current.Load()
	v.Retain()
	m.metrics.readersOpen.Inc()
	return &Transaction{mgr: m, version: v}
}

// Writer opens the single writer Transaction, blocking until any other
// open writer commits or rolls back.
func (m *Manager) Writer() *Transaction {
	m.mu.Lock()
	base := m.current.Load()
	m.metrics.writersOpen.Inc()
	return &Transaction{
		mgr:      m,
		writable: true,
		version:  base,
		wv:       newWritableVersion(base.Zone),
	}
}

// commit publishes tx's WritableVersion as the new current Version and
// runs the pruning policy over history. Called once, by Transaction.Commit.
func (m *Manager) commit(tx *Transaction) {
	seq := atomic.AddUint64(&m.seq, 1)
	next := newVersion(tx.wv.commit(), seq)

	old := m.current.Swap(next)

	m.historyMu.Lock()
	m.history = append(m.history, old)
	kept := m.pruning(next, m.history)
	pruned := len(m.history) - len(kept)
	m.history = kept
	m.historyMu.Unlock()

	m.metrics.commits.Inc()
	if pruned > 0 {
		m.metrics.prunes.Add(float64(pruned))
	}
	m.metrics.historyDepth.Set(float64(len(kept)))
	m.metrics.writersOpen.Dec()
	m.mu.Unlock()
}

// rollback discards tx's WritableVersion and releases writer admission
// without publishing anything.
func (m *Manager) rollback(tx *Transaction) {
	m.metrics.rollbacks.Inc()
	m.metrics.writersOpen.Dec()
	m.mu.Unlock()
}

// closeReader releases a reader's hold on its pinned Version.
func (m *Manager) closeReader(tx *Transaction) {
	tx.version.Release()
	m.metrics.readersOpen.Dec()
}
