package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rsaputelli/PRS/internal/mail"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/queue"
	"github.com/rsaputelli/PRS/internal/repository"
	pkgerrors "github.com/rsaputelli/PRS/pkg/errors"
	"github.com/rsaputelli/PRS/pkg/redis"
)

// ── in-memory store shared by every mock repository ──

type mockDB struct {
	seq int

	gigs     map[string]*model.Gig
	private  map[string]*model.GigPrivate
	deposits map[string][]model.GigDeposit
	payments map[string]*model.GigPayment
	staffing map[string]map[string]string // gig -> role -> musician

	venues     *mockDirectoryRepo[model.Venue]
	agents     *mockDirectoryRepo[model.Agent]
	musicians  *mockDirectoryRepo[model.Musician]
	soundTechs *mockDirectoryRepo[model.SoundTech]

	profiles     map[string]*model.Profile
	audits       []*model.EmailAudit
	auditErr     error
	subs         map[string]*model.StaffingSubscriber
	logs         []model.StaffingLog
	understaffed []model.UnderstaffedGig
	rollup       []model.Rollup1099
	payees       []model.PayeeTotal1099
	people       []model.PersonOption
	peopleCalls  int
}

func (db *mockDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%d", prefix, db.seq)
}

// newTestRepo a Repository over a fresh in-memory store.
func newTestRepo() (*repository.Repository, *mockDB) {
	db := &mockDB{
		gigs:     map[string]*model.Gig{},
		private:  map[string]*model.GigPrivate{},
		deposits: map[string][]model.GigDeposit{},
		payments: map[string]*model.GigPayment{},
		staffing: map[string]map[string]string{},
		profiles: map[string]*model.Profile{},
		subs:     map[string]*model.StaffingSubscriber{},
	}
	db.venues = newMockDirectoryRepo(db, "venue", func(v *model.Venue) *string { return &v.ID }, nil)
	db.agents = newMockDirectoryRepo(db, "agent", func(a *model.Agent) *string { return &a.ID }, nil)
	db.musicians = newMockDirectoryRepo(db, "mus", func(m *model.Musician) *string { return &m.ID }, db.musicianStaffed)
	db.soundTechs = newMockDirectoryRepo(db, "tech", func(s *model.SoundTech) *string { return &s.ID }, nil)

	repo := &repository.Repository{
		Gig:        &mockGigRepo{db: db},
		Deposit:    &mockDepositRepo{db: db},
		Payment:    &mockPaymentRepo{db: db},
		Staffing:   &mockStaffingRepo{db: db},
		Venue:      db.venues,
		Agent:      db.agents,
		Musician:   db.musicians,
		SoundTech:  db.soundTechs,
		Profile:    &mockProfileRepo{db: db},
		EmailAudit: &mockAuditRepo{db: db},
		Notify:     &mockNotifyRepo{db: db},
		Report:     &mockReportRepo{db: db},
	}
	repo.Tx = &mockTransactor{repo: repo}
	return repo, db
}

func (db *mockDB) musicianStaffed(id string) bool {
	for _, roles := range db.staffing {
		for _, mid := range roles {
			if mid == id {
				return true
			}
		}
	}
	return false
}

// ── Mock Transactor ──

type mockTransactor struct {
	repo *repository.Repository
}

func (m *mockTransactor) Transaction(_ context.Context, fn func(tx *repository.Repository) error) error {
	return fn(m.repo)
}

// ── Mock GigRepository ──

type mockGigRepo struct {
	db *mockDB
}

func (m *mockGigRepo) Create(_ context.Context, gig *model.Gig) error {
	if gig.ID == "" {
		gig.ID = m.db.nextID("gig")
	}
	cp := *gig
	m.db.gigs[gig.ID] = &cp
	return nil
}

func (m *mockGigRepo) GetByID(_ context.Context, id string) (*model.Gig, error) {
	g, ok := m.db.gigs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *mockGigRepo) GetDetail(ctx context.Context, id string) (*model.Gig, error) {
	g, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.VenueID != nil {
		g.Venue, _ = m.db.venues.GetByID(ctx, *g.VenueID)
	}
	if g.AgentID != nil {
		g.Agent, _ = m.db.agents.GetByID(ctx, *g.AgentID)
	}
	if g.SoundTechID != nil {
		g.SoundTech, _ = m.db.soundTechs.GetByID(ctx, *g.SoundTechID)
	}
	if p, ok := m.db.private[id]; ok {
		cp := *p
		g.Private = &cp
	}
	return g, nil
}

func (m *mockGigRepo) List(_ context.Context, f repository.GigFilter) ([]model.Gig, int64, error) {
	var out []model.Gig
	for _, g := range m.db.gigs {
		if f.ContractStatus != "" && g.ContractStatus != f.ContractStatus {
			continue
		}
		if f.From != nil && g.EventDate.Before(*f.From) {
			continue
		}
		if f.To != nil && g.EventDate.After(*f.To) {
			continue
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	return out, int64(len(out)), nil
}

func (m *mockGigRepo) Update(_ context.Context, gig *model.Gig) error {
	if _, ok := m.db.gigs[gig.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *gig
	m.db.gigs[gig.ID] = &cp
	return nil
}

func (m *mockGigRepo) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	g, ok := m.db.gigs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "closeout_status":
			g.CloseoutStatus = v.(string)
		case "closeout_at":
			if t, ok := v.(time.Time); ok {
				g.CloseoutAt = &t
			} else {
				g.CloseoutAt = nil
			}
		case "closeout_notes":
			g.CloseoutNotes, _ = v.(*string)
		case "final_venue_paid_date":
			g.FinalVenuePaidDate, _ = v.(*time.Time)
		case "final_venue_gross":
			g.FinalVenueGross, _ = v.(decimal.NullDecimal)
		}
	}
	return nil
}

func (m *mockGigRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := m.db.gigs[id]; !ok {
		return 0, nil
	}
	for _, p := range m.db.payments {
		if p.GigID == id {
			return 0, pkgerrors.ErrReferenced
		}
	}
	delete(m.db.gigs, id)
	delete(m.db.private, id)
	delete(m.db.deposits, id)
	delete(m.db.staffing, id)
	return 1, nil
}

func (m *mockGigRepo) CountChildren(_ context.Context, id string) (*repository.GigChildCounts, error) {
	c := &repository.GigChildCounts{
		Deposits:  int64(len(m.db.deposits[id])),
		Musicians: int64(len(m.db.staffing[id])),
	}
	if _, ok := m.db.private[id]; ok {
		c.Private = 1
	}
	for _, p := range m.db.payments {
		if p.GigID == id {
			c.Payments++
		}
	}
	return c, nil
}

func (m *mockGigRepo) GetPrivate(_ context.Context, gigID string) (*model.GigPrivate, error) {
	p, ok := m.db.private[gigID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (m *mockGigRepo) UpsertPrivate(_ context.Context, p *model.GigPrivate) error {
	cp := *p
	m.db.private[p.GigID] = &cp
	return nil
}

// ── Mock DepositRepository ──

type mockDepositRepo struct {
	db *mockDB
}

func (m *mockDepositRepo) ListByGig(_ context.Context, gigID string) ([]model.GigDeposit, error) {
	return append([]model.GigDeposit(nil), m.db.deposits[gigID]...), nil
}

func (m *mockDepositRepo) ReplaceForGig(_ context.Context, gigID string, deposits []model.GigDeposit) error {
	m.db.deposits[gigID] = append([]model.GigDeposit(nil), deposits...)
	return nil
}

// ── Mock PaymentRepository ──

type mockPaymentRepo struct {
	db *mockDB
}

func (m *mockPaymentRepo) Create(_ context.Context, p *model.GigPayment) error {
	if _, ok := m.db.gigs[p.GigID]; !ok {
		return pkgerrors.ErrReferenced
	}
	p.ID = m.db.nextID("pay")
	p.NetAmount = p.ExpectedNet()
	p.CreatedAt = time.Now()
	cp := *p
	m.db.payments[p.ID] = &cp
	return nil
}

func (m *mockPaymentRepo) GetByID(_ context.Context, id string) (*model.GigPayment, error) {
	p, ok := m.db.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPaymentRepo) ListByGig(_ context.Context, gigID string) ([]model.GigPayment, error) {
	var out []model.GigPayment
	for _, p := range m.db.payments {
		if p.GigID == gigID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockPaymentRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := m.db.payments[id]; !ok {
		return 0, nil
	}
	delete(m.db.payments, id)
	return 1, nil
}

func (m *mockPaymentRepo) DeleteByGig(_ context.Context, gigID string) (int64, error) {
	var n int64
	for id, p := range m.db.payments {
		if p.GigID == gigID {
			delete(m.db.payments, id)
			n++
		}
	}
	return n, nil
}

// ── Mock StaffingRepository ──

type mockStaffingRepo struct {
	db *mockDB
}

func (m *mockStaffingRepo) ListByGig(ctx context.Context, gigID string) ([]model.GigMusician, error) {
	var out []model.GigMusician
	for role, mid := range m.db.staffing[gigID] {
		gm := model.GigMusician{GigID: gigID, Role: role, MusicianID: mid}
		gm.Musician, _ = m.db.musicians.GetByID(ctx, mid)
		out = append(out, gm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out, nil
}

func (m *mockStaffingRepo) ListByGigs(_ context.Context, gigIDs []string) ([]model.GigMusician, error) {
	var out []model.GigMusician
	for _, gid := range gigIDs {
		for role, mid := range m.db.staffing[gid] {
			out = append(out, model.GigMusician{GigID: gid, Role: role, MusicianID: mid})
		}
	}
	return out, nil
}

func (m *mockStaffingRepo) Assign(_ context.Context, gm *model.GigMusician) error {
	if m.db.staffing[gm.GigID] == nil {
		m.db.staffing[gm.GigID] = map[string]string{}
	}
	m.db.staffing[gm.GigID][gm.Role] = gm.MusicianID
	return nil
}

func (m *mockStaffingRepo) Unassign(_ context.Context, gigID, role string) error {
	delete(m.db.staffing[gigID], role)
	return nil
}

func (m *mockStaffingRepo) CountByMusician(_ context.Context, musicianID string) (int64, error) {
	var n int64
	for _, roles := range m.db.staffing {
		for _, mid := range roles {
			if mid == musicianID {
				n++
			}
		}
	}
	return n, nil
}

// ── Mock DirectoryRepository ──

type mockDirectoryRepo[T any] struct {
	db     *mockDB
	prefix string
	rows   map[string]*T
	idOf   func(*T) *string
	// referenced reports a RESTRICT reference; nil means never referenced.
	referenced func(id string) bool
}

func newMockDirectoryRepo[T any](db *mockDB, prefix string, idOf func(*T) *string, referenced func(string) bool) *mockDirectoryRepo[T] {
	return &mockDirectoryRepo[T]{db: db, prefix: prefix, rows: map[string]*T{}, idOf: idOf, referenced: referenced}
}

func (m *mockDirectoryRepo[T]) Create(_ context.Context, row *T) error {
	id := m.idOf(row)
	if *id == "" {
		*id = m.db.nextID(m.prefix)
	}
	cp := *row
	m.rows[*id] = &cp
	return nil
}

func (m *mockDirectoryRepo[T]) GetByID(_ context.Context, id string) (*T, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockDirectoryRepo[T]) List(_ context.Context, _ repository.DirectoryFilter) ([]T, error) {
	ids := make([]string, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.rows[id])
	}
	return out, nil
}

func (m *mockDirectoryRepo[T]) Update(_ context.Context, row *T) error {
	id := *m.idOf(row)
	if _, ok := m.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *row
	m.rows[id] = &cp
	return nil
}

func (m *mockDirectoryRepo[T]) SetActive(_ context.Context, id string, _ bool) error {
	if _, ok := m.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (m *mockDirectoryRepo[T]) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := m.rows[id]; !ok {
		return 0, nil
	}
	if m.referenced != nil && m.referenced(id) {
		return 0, pkgerrors.ErrReferenced
	}
	delete(m.rows, id)
	return 1, nil
}

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	db *mockDB
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	p, ok := m.db.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (m *mockProfileRepo) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	for _, p := range m.db.profiles {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) Ensure(_ context.Context, p *model.Profile) error {
	if existing, ok := m.db.profiles[p.ID]; ok {
		*p = *existing
		return nil
	}
	cp := *p
	m.db.profiles[p.ID] = &cp
	return nil
}

func (m *mockProfileRepo) List(_ context.Context) ([]model.Profile, error) {
	var out []model.Profile
	for _, p := range m.db.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProfileRepo) UpdateRole(_ context.Context, id, role string) error {
	p, ok := m.db.profiles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Role = role
	return nil
}

// ── Mock EmailAuditRepository ──

type mockAuditRepo struct {
	db *mockDB
}

func (m *mockAuditRepo) Create(_ context.Context, row *model.EmailAudit) error {
	if m.db.auditErr != nil {
		return m.db.auditErr
	}
	for _, a := range m.db.audits {
		if a.Token == row.Token {
			return pkgerrors.ErrDuplicate
		}
	}
	row.ID = m.db.nextID("audit")
	cp := *row
	m.db.audits = append(m.db.audits, &cp)
	return nil
}

func (m *mockAuditRepo) GetByToken(_ context.Context, token string) (*model.EmailAudit, error) {
	for _, a := range m.db.audits {
		if a.Token == token {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuditRepo) MarkClicked(_ context.Context, token string, at time.Time) (bool, error) {
	for _, a := range m.db.audits {
		if a.Token == token && a.ClickedAt == nil {
			a.ClickedAt = &at
			a.Status = model.EmailStatusClicked
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAuditRepo) ListByGig(_ context.Context, gigID string) ([]model.EmailAudit, error) {
	var out []model.EmailAudit
	for _, a := range m.db.audits {
		if model.StrVal(a.GigID) == gigID {
			out = append(out, *a)
		}
	}
	return out, nil
}

// ── Mock NotificationRepository ──

type mockNotifyRepo struct {
	db *mockDB
}

func (m *mockNotifyRepo) ListSubscribers(_ context.Context, activeOnly bool) ([]model.StaffingSubscriber, error) {
	var out []model.StaffingSubscriber
	for _, s := range m.db.subs {
		if activeOnly && !s.Active {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *mockNotifyRepo) UpsertSubscriber(_ context.Context, s *model.StaffingSubscriber) error {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	if existing, ok := m.db.subs[s.Email]; ok {
		existing.Name, existing.Active = s.Name, s.Active
		s.ID = existing.ID
		return nil
	}
	s.ID = m.db.nextID("sub")
	cp := *s
	m.db.subs[s.Email] = &cp
	return nil
}

func (m *mockNotifyRepo) CreateLog(_ context.Context, l *model.StaffingLog) error {
	m.db.logs = append(m.db.logs, *l)
	return nil
}

func (m *mockNotifyRepo) ListLogs(_ context.Context, _ int) ([]model.StaffingLog, error) {
	return m.db.logs, nil
}

// ── Mock ReportRepository ──

type mockReportRepo struct {
	db *mockDB
}

func (m *mockReportRepo) ListUnderstaffed(_ context.Context, through time.Time) ([]model.UnderstaffedGig, error) {
	var out []model.UnderstaffedGig
	for _, g := range m.db.understaffed {
		if !g.EventDate.After(through) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockReportRepo) ListPayeeTotals(_ context.Context, year int) ([]model.PayeeTotal1099, error) {
	var out []model.PayeeTotal1099
	for _, p := range m.db.payees {
		if p.TaxYear == year {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockReportRepo) ListRollup(_ context.Context, year int) ([]model.Rollup1099, error) {
	var out []model.Rollup1099
	for _, r := range m.db.rollup {
		if r.TaxYear == year {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReportRepo) ListPeople(_ context.Context, kind string, activeOnly bool) ([]model.PersonOption, error) {
	m.db.peopleCalls++
	var out []model.PersonOption
	for _, p := range m.db.people {
		if (kind == "" || p.Kind == kind) && (!activeOnly || p.Active) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ── Mock collaborators ──

type mockSender struct {
	sent []*mail.Message
	err  error
	// failFor fails only for these recipients when set.
	failFor map[string]bool
}

func (m *mockSender) Send(_ context.Context, msg *mail.Message) (string, error) {
	if m.err != nil && (m.failFor == nil || m.failFor[msg.To[0]]) {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return fmt.Sprintf("msg-%d", len(m.sent)), nil
}

type mockPublisher struct {
	jobs []queue.Job
	err  error
}

func (m *mockPublisher) Publish(_ context.Context, job queue.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) GetBytes(_ context.Context, key string) ([]byte, error) {
	b, ok := m.data[key]
	if !ok {
		return nil, redis.ErrCacheMiss
	}
	return b, nil
}

func (m *mockCache) SetBytes(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type mockCalendar struct {
	synced []string
	err    error
}

func (m *mockCalendar) UpsertGig(_ context.Context, g *model.Gig) error {
	if m.err != nil {
		return m.err
	}
	m.synced = append(m.synced, g.ID)
	return nil
}

var errBoom = errors.New("boom")
