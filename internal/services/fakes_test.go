package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
	"time"

	"github.com/shopspring/decimal"
)

// memDB is an in-memory store with per-item serialisation and all-or-nothing commits.
type memDB struct {
	mu      sync.Mutex
	items   map[uint]models.OrderItem
	orders  map[uint]models.Order
	events  []models.OrderTracking
	ledger  []models.TransactionLog
	lastID  uint
	locksMu sync.Mutex
	locks   map[uint]*sync.Mutex

	failStatusAppend error
	failLedgerAppend error
	failTotalPaid    error
}

func newMemDB() *memDB {
	return &memDB{
		items:  map[uint]models.OrderItem{},
		orders: map[uint]models.Order{},
		locks:  map[uint]*sync.Mutex{},
	}
}

// addItem stores an item owned by ownerID and returns its id.
func (db *memDB) addItem(ownerID uint, st models.ServiceType, price int64) uint {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.lastID++
	order := models.Order{ID: db.lastID, UserID: ownerID, OrderNumber: "ORD-TEST", CustomerName: "customer"}
	db.orders[order.ID] = order
	db.lastID++
	item := models.OrderItem{
		ID:             db.lastID,
		OrderID:        order.ID,
		ServiceType:    st,
		FinalPrice:     decimal.NewFromInt(price),
		ApprovalStatus: models.ApprovalAccepted,
		CurrentStatus:  models.StatusPending,
		PaymentStatus:  models.PaymentUnpaid,
	}
	db.items[item.ID] = item
	return item.ID
}

func (db *memDB) item(id uint) models.OrderItem {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.items[id]
}

func (db *memDB) setApproval(id uint, approval models.ApprovalStatus) {
	db.mu.Lock()
	defer db.mu.Unlock()
	item := db.items[id]
	item.ApprovalStatus = approval
	db.items[id] = item
}

func (db *memDB) eventsFor(id uint) []models.OrderTracking {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.OrderTracking
	for _, e := range db.events {
		if e.OrderItemID == id {
			out = append(out, e)
		}
	}
	return out
}

func (db *memDB) ledgerFor(id uint) []models.TransactionLog {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.TransactionLog
	for _, e := range db.ledger {
		if e.OrderItemID == id {
			out = append(out, e)
		}
	}
	return out
}

func (db *memDB) totalPaid(id uint) decimal.Decimal {
	total := decimal.Zero
	for _, e := range db.ledgerFor(id) {
		if e.TransactionType.Collected() {
			total = total.Add(e.Amount)
		}
	}
	return total
}

func (db *memDB) nextID() uint {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.lastID++
	return db.lastID
}

func (db *memDB) itemLock(id uint) *sync.Mutex {
	db.locksMu.Lock()
	defer db.locksMu.Unlock()
	l, ok := db.locks[id]
	if !ok {
		l = &sync.Mutex{}
		db.locks[id] = l
	}
	return l
}

func (db *memDB) loadItem(id uint) (*models.OrderItem, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	item, ok := db.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	order := db.orders[item.OrderID]
	item.Order = &order
	return &item, nil
}

// memTx buffers writes for one item until commit.
type memTx struct {
	db     *memDB
	item   models.OrderItem
	events []models.OrderTracking
	ledger []models.TransactionLog
}

func (db *memDB) repos(tx *memTx) repository.Repositories {
	return repository.Repositories{
		Items:    &memItems{db: db, tx: tx},
		Statuses: &memStatuses{db: db, tx: tx},
		Ledger:   &memLedger{db: db, tx: tx},
	}
}

func (db *memDB) RunForItem(ctx context.Context, orderItemID uint, fn repository.ItemWork) error {
	lock := db.itemLock(orderItemID)
	lock.Lock()
	defer lock.Unlock()

	item, err := db.loadItem(orderItemID)
	if err != nil {
		return err
	}
	tx := &memTx{db: db, item: *item}
	if err := fn(ctx, db.repos(tx), item); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	committed := tx.item
	committed.Order = nil
	db.items[orderItemID] = committed
	db.events = append(db.events, tx.events...)
	db.ledger = append(db.ledger, tx.ledger...)
	return nil
}

type memItems struct {
	db *memDB
	tx *memTx
}

func (r *memItems) Create(ctx context.Context, orderItem *models.OrderItem) error {
	return errors.New("not supported")
}

func (r *memItems) GetByID(ctx context.Context, id uint) (*models.OrderItem, error) {
	return r.db.loadItem(id)
}

func (r *memItems) LockByID(ctx context.Context, id uint) (*models.OrderItem, error) {
	return r.db.loadItem(id)
}

func (r *memItems) GetByOrderID(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	return nil, errors.New("not supported")
}

func (r *memItems) update(id uint, fn func(item *models.OrderItem)) error {
	if r.tx == nil || r.tx.item.ID != id {
		return errors.New("write outside unit of work")
	}
	fn(&r.tx.item)
	return nil
}

func (r *memItems) UpdateCurrentStatus(ctx context.Context, id uint, status models.Status) error {
	return r.update(id, func(item *models.OrderItem) { item.CurrentStatus = status })
}

func (r *memItems) UpdatePaymentStatus(ctx context.Context, id uint, status models.PaymentStatus) error {
	return r.update(id, func(item *models.OrderItem) { item.PaymentStatus = status })
}

func (r *memItems) UpdatePrice(ctx context.Context, id uint, price decimal.Decimal, approval models.ApprovalStatus) error {
	return r.update(id, func(item *models.OrderItem) {
		item.FinalPrice = price
		item.ApprovalStatus = approval
	})
}

type memStatuses struct {
	db *memDB
	tx *memTx
}

func (s *memStatuses) Append(ctx context.Context, event *models.OrderTracking) error {
	if s.db.failStatusAppend != nil {
		return s.db.failStatusAppend
	}
	if s.tx == nil {
		return errors.New("write outside unit of work")
	}
	event.ID = s.db.nextID()
	s.tx.events = append(s.tx.events, *event)
	return nil
}

func (s *memStatuses) all(orderItemID uint) []models.OrderTracking {
	events := s.db.eventsFor(orderItemID)
	if s.tx != nil {
		events = append(events, s.tx.events...)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].ID < events[j].ID
	})
	return events
}

func (s *memStatuses) Latest(ctx context.Context, orderItemID uint) (*models.OrderTracking, error) {
	events := s.all(orderItemID)
	if len(events) == 0 {
		return nil, nil
	}
	return &events[len(events)-1], nil
}

func (s *memStatuses) ListByItem(ctx context.Context, orderItemID uint) ([]models.OrderTracking, error) {
	return s.all(orderItemID), nil
}

type memLedger struct {
	db *memDB
	tx *memTx
}

func (l *memLedger) Append(ctx context.Context, entry *models.TransactionLog) error {
	if l.db.failLedgerAppend != nil {
		return l.db.failLedgerAppend
	}
	if l.tx == nil {
		return errors.New("write outside unit of work")
	}
	entry.ID = l.db.nextID()
	l.tx.ledger = append(l.tx.ledger, *entry)
	return nil
}

func (l *memLedger) entries(orderItemID uint) []models.TransactionLog {
	entries := l.db.ledgerFor(orderItemID)
	if l.tx != nil {
		entries = append(entries, l.tx.ledger...)
	}
	return entries
}

func (l *memLedger) TotalPaid(ctx context.Context, orderItemID uint) (decimal.Decimal, error) {
	if l.db.failTotalPaid != nil {
		return decimal.Zero, l.db.failTotalPaid
	}
	total := decimal.Zero
	for _, e := range l.entries(orderItemID) {
		if e.TransactionType.Collected() {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (l *memLedger) Summary(ctx context.Context, orderItemID uint) (*models.PaymentSummary, error) {
	return repository.SummarizeLedger(l.entries(orderItemID)), nil
}

func (l *memLedger) ListByItem(ctx context.Context, orderItemID uint) ([]models.TransactionLog, error) {
	return l.entries(orderItemID), nil
}

type notification struct {
	kind        string
	userID      uint
	orderItemID uint
	status      models.Status
	amount      decimal.Decimal
	method      string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notification
	err   error
}

func (n *fakeNotifier) record(c notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, c)
	return n.err
}

func (n *fakeNotifier) OnStatusAccepted(ctx context.Context, userID, orderItemID uint, serviceType models.ServiceType) error {
	return n.record(notification{kind: models.NotificationAccepted, userID: userID, orderItemID: orderItemID})
}

func (n *fakeNotifier) OnStatusChanged(ctx context.Context, userID, orderItemID uint, status models.Status, notes string) error {
	return n.record(notification{kind: models.NotificationStatusChanged, userID: userID, orderItemID: orderItemID, status: status})
}

func (n *fakeNotifier) OnPaymentRecorded(ctx context.Context, userID, orderItemID uint, amount decimal.Decimal, method string, serviceType models.ServiceType) error {
	return n.record(notification{kind: models.NotificationPayment, userID: userID, orderItemID: orderItemID, amount: amount, method: method})
}

func (n *fakeNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.calls))
	for i, c := range n.calls {
		out[i] = c.kind
	}
	return out
}

type auditEntry struct {
	orderItemID uint
	actionType  string
	role        models.ActorRole
	previous    string
	next        string
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []auditEntry
	err     error
}

func (a *fakeAudit) LogAction(ctx context.Context, orderItemID, userID uint, actionType string, actorRole models.ActorRole, previousStatus, newStatus, notes string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{orderItemID, actionType, actorRole, previousStatus, newStatus})
	return a.err
}

func (a *fakeAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.actionType
	}
	return out
}

type fakeCache struct {
	mu          sync.Mutex
	summaries   map[uint]models.PaymentSummary
	gets        int
	sets        int
	setErr      error
	invalidated []uint
}

func newFakeCache() *fakeCache {
	return &fakeCache{summaries: map[uint]models.PaymentSummary{}}
}

func (c *fakeCache) GetPaymentSummary(ctx context.Context, orderItemID uint) (*models.PaymentSummary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	s, ok := c.summaries[orderItemID]
	if !ok {
		return nil, false, nil
	}
	return &s, true, nil
}

func (c *fakeCache) SetPaymentSummary(ctx context.Context, orderItemID uint, summary *models.PaymentSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	if current, ok := c.summaries[orderItemID]; ok && current.TotalTransactions > summary.TotalTransactions {
		return nil
	}
	c.summaries[orderItemID] = *summary
	return nil
}

func (c *fakeCache) cached(orderItemID uint) (models.PaymentSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.summaries[orderItemID]
	return s, ok
}

func (c *fakeCache) InvalidatePaymentSummary(ctx context.Context, orderItemID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.summaries, orderItemID)
	c.invalidated = append(c.invalidated, orderItemID)
	return nil
}

type fakeLocker struct {
	mu         sync.Mutex
	obtained   int
	released   int
	err        error
	releaseErr error
}

func (l *fakeLocker) Lock(ctx context.Context, orderItemID uint) (func() error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.obtained++
	return func() error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released++
		return l.releaseErr
	}, nil
}

// stepClock advances one second per call so event ordering is deterministic.
func stepClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

type harness struct {
	db       *memDB
	notifier *fakeNotifier
	audit    *fakeAudit
	cache    *fakeCache
	locker   *fakeLocker
	svc      OrderItemService
}

const (
	ownerID = uint(500)
	adminID = uint(1)
)

var (
	admin = Actor{ID: adminID, Role: models.ActorAdmin}
	owner = Actor{ID: ownerID, Role: models.ActorUser}
)

// harnessOption adjusts the service dependencies before the harness builds the service.
type harnessOption func(deps *OrderItemServiceDeps)

func newHarness(opts ...harnessOption) *harness {
	h := &harness{
		db:       newMemDB(),
		notifier: &fakeNotifier{},
		audit:    &fakeAudit{},
		cache:    newFakeCache(),
		locker:   &fakeLocker{},
	}
	deps := OrderItemServiceDeps{
		Items:      &memItems{db: h.db},
		Statuses:   &memStatuses{db: h.db},
		Ledger:     &memLedger{db: h.db},
		UnitOfWork: h.db,
		Locker:     h.locker,
		Cache:      h.cache,
		Notifier:   h.notifier,
		Audit:      h.audit,
		Clock:      stepClock(),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	svc, err := NewOrderItemService(deps)
	if err != nil {
		panic(err)
	}
	h.svc = svc
	return h
}

func (h *harness) transition(id uint, status models.Status) (*TransitionResult, error) {
	return h.svc.RecordStatusTransition(context.Background(), StatusTransitionCommand{
		OrderItemID: id,
		Status:      status,
		Actor:       admin,
	})
}

func (h *harness) pay(id uint, amount string, actor Actor) (*PaymentResult, error) {
	return h.svc.RecordPayment(context.Background(), RecordPaymentCommand{
		OrderItemID:   id,
		Amount:        decimal.RequireFromString(amount),
		PaymentMethod: "cash",
		Actor:         actor,
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
