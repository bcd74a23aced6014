package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	redisclient "github.com/hackgods/healthcare-portal/internal/redis"
)

type memRepo struct {
	mu        sync.Mutex
	providers map[int64]bool
	rows      map[int64]*Appointment
	nextID    int64
	today     string
	failWith  error
}

func newMemRepo(providers ...int64) *memRepo {
	r := &memRepo{
		providers: map[int64]bool{},
		rows:      map[int64]*Appointment{},
		today:     time.Now().Format("2006-01-02"),
	}
	for _, p := range providers {
		r.providers[p] = true
	}
	return r
}

// seed inserts a row directly, bypassing the service.
func (r *memRepo) seed(a Appointment) *Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	cp := a
	r.rows[a.ID] = &cp
	return &cp
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *memRepo) ProviderExists(_ context.Context, id int64) (bool, error) {
	if r.failWith != nil {
		return false, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.providers[id], nil
}

func (r *memRepo) ScheduledTimes(_ context.Context, providerID int64, date string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, a := range r.rows {
		if a.ProviderID == providerID && a.Date == date && a.Status == StatusScheduled {
			out = append(out, a.Time)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *memRepo) Create(_ context.Context, in NewAppointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a := &Appointment{
		ID:         r.nextID,
		PatientID:  in.PatientID,
		ProviderID: in.ProviderID,
		FacilityID: in.FacilityID,
		Date:       in.Date,
		Time:       in.Time,
		Reason:     in.Reason,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	r.rows[a.ID] = a
	cp := *a
	return &cp, nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memRepo) sorted(keep func(*Appointment) bool, asc bool) []Appointment {
	out := []Appointment{}
	for _, a := range r.rows {
		if keep(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ki := out[i].Date + " " + out[i].Time
		kj := out[j].Date + " " + out[j].Time
		if asc {
			return ki < kj
		}
		return ki > kj
	})
	return out
}

func (r *memRepo) ListByPatient(_ context.Context, patientID int64, f ListFilter) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(a *Appointment) bool {
		return a.PatientID == patientID &&
			(f.Status == "" || a.Status == f.Status) &&
			(!f.Upcoming || a.Date >= r.today)
	}, false), nil
}

func (r *memRepo) NextForPatient(_ context.Context, patientID int64) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sorted(func(a *Appointment) bool {
		return a.PatientID == patientID && a.Date >= r.today &&
			(a.Status == StatusPending || a.Status == StatusScheduled)
	}, true)
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (r *memRepo) RecentForPatient(_ context.Context, patientID int64, limit int) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sorted(func(a *Appointment) bool { return a.PatientID == patientID }, false)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// scheduledClash mirrors the partial unique index on scheduled slots.
func (r *memRepo) scheduledClash(self *Appointment) bool {
	if self.Status != StatusScheduled {
		return false
	}
	for _, a := range r.rows {
		if a.ID != self.ID && a.Status == StatusScheduled &&
			a.ProviderID == self.ProviderID && a.Date == self.Date && a.Time == self.Time {
			return true
		}
	}
	return false
}

func (r *memRepo) Update(_ context.Context, id int64, p Patch) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	next := *a
	if p.ProviderID != nil {
		next.ProviderID = *p.ProviderID
	}
	if p.FacilityID != nil {
		next.FacilityID = *p.FacilityID
	}
	if p.Date != nil {
		next.Date = *p.Date
	}
	if p.Time != nil {
		next.Time = *p.Time
	}
	if p.Reason != nil {
		next.Reason = *p.Reason
	}
	if r.scheduledClash(&next) {
		return nil, ErrSlotTaken
	}
	*a = next
	cp := next
	return &cp, nil
}

func (r *memRepo) AdminUpdate(_ context.Context, id int64, p AdminPatch) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	next := *a
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.Notes != nil {
		next.Notes = p.Notes
	}
	if r.scheduledClash(&next) {
		return nil, ErrSlotTaken
	}
	*a = next
	cp := next
	return &cp, nil
}

func (r *memRepo) SetStatus(ctx context.Context, id int64, status Status) (*Appointment, error) {
	return r.AdminUpdate(ctx, id, AdminPatch{Status: &status})
}

func (r *memRepo) AdminList(_ context.Context, f AdminFilter) ([]Appointment, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(func(a *Appointment) bool {
		return (f.Status == "" || a.Status == f.Status) &&
			(f.ProviderID == 0 || a.ProviderID == f.ProviderID) &&
			(f.FacilityID == 0 || a.FacilityID == f.FacilityID) &&
			(f.DateFrom == "" || a.Date >= f.DateFrom) &&
			(f.DateTo == "" || a.Date <= f.DateTo)
	}, false)
	total := len(all)
	start := f.Offset()
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// memLocker is an in-process stand-in for the Redis slot locker.
type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
	keys []string
}

func newMemLocker() *memLocker {
	return &memLocker{held: map[string]bool{}}
}

func (l *memLocker) WithSlotLock(ctx context.Context, slot redisclient.SlotKey, fn func(ctx context.Context) error) error {
	key := slot.String()
	l.mu.Lock()
	if l.held[key] {
		l.mu.Unlock()
		return redisclient.ErrLockNotAcquired
	}
	l.held[key] = true
	l.keys = append(l.keys, key)
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}()
	return fn(ctx)
}
