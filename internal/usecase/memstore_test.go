package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/ligue-rateio/internal/entity"
)

// memStore imita o Postgres: transações serializadas, rollback descartando a
// cópia de trabalho e as mesmas restrições de unicidade e status.
type memStore struct {
	txMu sync.Mutex
	rw   sync.RWMutex
	data *memData

	// chargeCreateHook permite simular falha de banco em um insert.
	chargeCreateHook func(c *entity.Charge) error
}

type memData struct {
	accounts     map[string]entity.Account
	streamings   map[string]entity.Streaming
	participants map[string]entity.Participant
	subs         map[string]entity.Subscription
	charges      map[string]entity.Charge
	batches      map[string]entity.Batch
	wallet       []entity.WalletEntry
	plans        map[string]entity.Plan
}

func newMemStore() *memStore {
	return &memStore{data: &memData{
		accounts:     map[string]entity.Account{},
		streamings:   map[string]entity.Streaming{},
		participants: map[string]entity.Participant{},
		subs:         map[string]entity.Subscription{},
		charges:      map[string]entity.Charge{},
		batches:      map[string]entity.Batch{},
		plans:        map[string]entity.Plan{},
	}}
}

func (d *memData) clone() *memData {
	c := &memData{
		accounts:     make(map[string]entity.Account, len(d.accounts)),
		streamings:   make(map[string]entity.Streaming, len(d.streamings)),
		participants: make(map[string]entity.Participant, len(d.participants)),
		subs:         make(map[string]entity.Subscription, len(d.subs)),
		charges:      make(map[string]entity.Charge, len(d.charges)),
		batches:      make(map[string]entity.Batch, len(d.batches)),
		wallet:       append([]entity.WalletEntry(nil), d.wallet...),
		plans:        make(map[string]entity.Plan, len(d.plans)),
	}
	for k, v := range d.accounts {
		c.accounts[k] = v
	}
	for k, v := range d.streamings {
		c.streamings[k] = v
	}
	for k, v := range d.participants {
		c.participants[k] = v
	}
	for k, v := range d.subs {
		c.subs[k] = v
	}
	for k, v := range d.charges {
		c.charges[k] = v
	}
	for k, v := range d.batches {
		v.ChargeIDs = append([]string(nil), v.ChargeIDs...)
		c.batches[k] = v
	}
	for k, v := range d.plans {
		c.plans[k] = v
	}
	return c
}

func (s *memStore) current() *memView {
	s.rw.RLock()
	defer s.rw.RUnlock()
	// leitura fora de transação enxerga só dados confirmados
	return &memView{d: s.data.clone(), store: s}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	work := s.current()
	if err := fn(work); err != nil {
		return err
	}
	s.rw.Lock()
	s.data = work.d
	s.rw.Unlock()
	return nil
}

func (s *memStore) Accounts() entity.AccountRepository           { return s.current().Accounts() }
func (s *memStore) Streamings() entity.StreamingRepository       { return s.current().Streamings() }
func (s *memStore) Participants() entity.ParticipantRepository   { return s.current().Participants() }
func (s *memStore) Subscriptions() entity.SubscriptionRepository { return s.current().Subscriptions() }
func (s *memStore) Charges() entity.ChargeRepository             { return s.current().Charges() }
func (s *memStore) Batches() entity.BatchRepository              { return s.current().Batches() }
func (s *memStore) Wallet() entity.WalletRepository              { return s.current().Wallet() }
func (s *memStore) Plans() entity.PlanRepository                 { return s.current().Plans() }

// helpers de teste, sempre sobre os dados confirmados
func (s *memStore) snapshot() *memData {
	s.rw.RLock()
	defer s.rw.RUnlock()
	return s.data.clone()
}

func (s *memStore) seed(fn func(d *memData)) {
	s.rw.Lock()
	defer s.rw.Unlock()
	fn(s.data)
}

func (s *memStore) chargesOf(subID string) []entity.Charge {
	var out []entity.Charge
	for _, c := range s.snapshot().charges {
		if c.SubscriptionID == subID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodStart.Before(out[j].PeriodStart) })
	return out
}

func (s *memStore) subscription(id string) entity.Subscription {
	return s.snapshot().subs[id]
}

func (s *memStore) charge(id string) entity.Charge {
	return s.snapshot().charges[id]
}

type memView struct {
	d     *memData
	store *memStore
}

func (v *memView) Accounts() entity.AccountRepository           { return memAccounts{v} }
func (v *memView) Streamings() entity.StreamingRepository       { return memStreamings{v} }
func (v *memView) Participants() entity.ParticipantRepository   { return memParticipants{v} }
func (v *memView) Subscriptions() entity.SubscriptionRepository { return memSubscriptions{v} }
func (v *memView) Charges() entity.ChargeRepository             { return memCharges{v} }
func (v *memView) Batches() entity.BatchRepository              { return memBatches{v} }
func (v *memView) Wallet() entity.WalletRepository              { return memWallet{v} }
func (v *memView) Plans() entity.PlanRepository                 { return memPlans{v} }

type memAccounts struct{ *memView }

func (r memAccounts) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	a, ok := r.d.accounts[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &a, nil
}

func (r memAccounts) LockByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.FindByID(ctx, id)
}

func (r memAccounts) UpdateAvailableAmount(ctx context.Context, id string, amount decimal.Decimal) error {
	a, ok := r.d.accounts[id]
	if !ok {
		return entity.ErrNotFound
	}
	a.AvailableAmount = amount
	r.d.accounts[id] = a
	return nil
}

type memStreamings struct{ *memView }

func (r memStreamings) FindByID(ctx context.Context, id string) (*entity.Streaming, error) {
	s, ok := r.d.streamings[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &s, nil
}

func (r memStreamings) LockByID(ctx context.Context, id string) (*entity.Streaming, error) {
	return r.FindByID(ctx, id)
}

type memParticipants struct{ *memView }

func (r memParticipants) Create(ctx context.Context, p *entity.Participant) error {
	for _, id := range p.Identities() {
		if _, err := r.FindByIdentity(ctx, p.AccountID, id); err == nil {
			return entity.ErrDuplicateParticipant
		}
	}
	r.d.participants[p.ID] = *p
	return nil
}

func (r memParticipants) FindByID(ctx context.Context, id string) (*entity.Participant, error) {
	p, ok := r.d.participants[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &p, nil
}

func (r memParticipants) FindByIdentity(ctx context.Context, accountID string, id entity.Identity) (*entity.Participant, error) {
	for _, p := range r.d.participants {
		if p.AccountID != accountID {
			continue
		}
		for _, other := range p.Identities() {
			if other == id {
				return &p, nil
			}
		}
	}
	return nil, entity.ErrNotFound
}

type memSubscriptions struct{ *memView }

func (r memSubscriptions) Create(ctx context.Context, s *entity.Subscription) error {
	if ok, _ := r.ExistsBillable(ctx, s.ParticipantID, s.StreamingID); ok {
		return entity.ErrDuplicateSubscription
	}
	r.d.subs[s.ID] = *s
	return nil
}

func (r memSubscriptions) FindByID(ctx context.Context, id string) (*entity.Subscription, error) {
	s, ok := r.d.subs[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &s, nil
}

func (r memSubscriptions) CountBillable(ctx context.Context, streamingID string) (int, error) {
	n := 0
	for _, s := range r.d.subs {
		if s.StreamingID == streamingID && s.Billable() {
			n++
		}
	}
	return n, nil
}

func (r memSubscriptions) ExistsBillable(ctx context.Context, participantID, streamingID string) (bool, error) {
	for _, s := range r.d.subs {
		if s.ParticipantID == participantID && s.StreamingID == streamingID && s.Billable() {
			return true, nil
		}
	}
	return false, nil
}

func (r memSubscriptions) ListBillable(ctx context.Context) ([]*entity.Subscription, error) {
	var out []*entity.Subscription
	for _, s := range r.d.subs {
		if s.Billable() {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memSubscriptions) Update(ctx context.Context, s *entity.Subscription, from entity.SubscriptionStatus) error {
	cur, ok := r.d.subs[s.ID]
	if !ok {
		return entity.ErrNotFound
	}
	if cur.Status != from {
		return entity.ErrStaleStatus
	}
	r.d.subs[s.ID] = *s
	return nil
}

type memCharges struct{ *memView }

func (r memCharges) Create(ctx context.Context, c *entity.Charge) error {
	if hook := r.store.chargeCreateHook; hook != nil {
		if err := hook(c); err != nil {
			return err
		}
	}
	for _, other := range r.d.charges {
		if other.SubscriptionID == c.SubscriptionID && other.PeriodStart.Equal(c.PeriodStart) && other.Status != entity.ChargeCancelado {
			return entity.ErrDuplicateCharge
		}
	}
	r.d.charges[c.ID] = *c
	return nil
}

func (r memCharges) FindByID(ctx context.Context, id string) (*entity.Charge, error) {
	c, ok := r.d.charges[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &c, nil
}

func (r memCharges) ListBySubscription(ctx context.Context, subscriptionID string) ([]*entity.Charge, error) {
	var out []*entity.Charge
	for _, c := range r.d.charges {
		if c.SubscriptionID == subscriptionID {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodStart.Before(out[j].PeriodStart) })
	return out, nil
}

func (r memCharges) Latest(ctx context.Context, subscriptionID string) (*entity.Charge, error) {
	list, _ := r.ListBySubscription(ctx, subscriptionID)
	if len(list) == 0 {
		return nil, entity.ErrNotFound
	}
	return list[len(list)-1], nil
}

func (r memCharges) Update(ctx context.Context, c *entity.Charge, from entity.ChargeStatus) error {
	cur, ok := r.d.charges[c.ID]
	if !ok {
		return entity.ErrNotFound
	}
	if cur.Status != from {
		return entity.ErrStaleStatus
	}
	r.d.charges[c.ID] = *c
	return nil
}

func (r memCharges) SumByStatus(ctx context.Context, accountID string) (map[entity.ChargeStatus]decimal.Decimal, error) {
	out := map[entity.ChargeStatus]decimal.Decimal{}
	for _, c := range r.d.charges {
		if c.AccountID != accountID {
			continue
		}
		out[c.Status] = out[c.Status].Add(c.Amount)
	}
	return out, nil
}

type memBatches struct{ *memView }

func (r memBatches) Create(ctx context.Context, b *entity.Batch) error {
	r.d.batches[b.ID] = *b
	return nil
}

func (r memBatches) FindByID(ctx context.Context, id string) (*entity.Batch, error) {
	b, ok := r.d.batches[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	b.ChargeIDs = append([]string(nil), b.ChargeIDs...)
	return &b, nil
}

func (r memBatches) Update(ctx context.Context, b *entity.Batch, from entity.BatchStatus) error {
	cur, ok := r.d.batches[b.ID]
	if !ok {
		return entity.ErrNotFound
	}
	if cur.Status != from {
		return entity.ErrStaleStatus
	}
	r.d.batches[b.ID] = *b
	return nil
}

type memWallet struct{ *memView }

func (r memWallet) Append(ctx context.Context, e *entity.WalletEntry) error {
	if e.Kind == entity.EntryCredito {
		for _, other := range r.d.wallet {
			if other.Kind == entity.EntryCredito && other.ChargeID == e.ChargeID {
				return entity.ErrDuplicateWalletEntry
			}
		}
	}
	r.d.wallet = append(r.d.wallet, *e)
	return nil
}

func (r memWallet) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var entries []*entity.WalletEntry
	for i := range r.d.wallet {
		if r.d.wallet[i].AccountID == accountID {
			entries = append(entries, &r.d.wallet[i])
		}
	}
	return entity.Balance(entries), nil
}

type memPlans struct{ *memView }

func (r memPlans) FindByID(ctx context.Context, id string) (*entity.Plan, error) {
	p, ok := r.d.plans[id]
	if !ok {
		return nil, entity.ErrPlanNotFound
	}
	return &p, nil
}
