package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/keerthana1830/Lacteva/models"
)

// MemoryStore is the in-memory mock used when no DATABASE_URL is configured.
// All state is lost on restart; it exists so the dashboard can be exercised
// without a database.
type MemoryStore struct {
	mu sync.Mutex

	users    map[uint]*models.User
	devices  map[string]*models.Device
	readings map[uint]*models.SpectralReading
	alerts   map[uint]*models.Alert
	batches  []models.BatchAnalysis

	nextUserID    uint
	nextReadingID uint
	nextAlertID   uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uint]*models.User),
		devices:  make(map[string]*models.Device),
		readings: make(map[uint]*models.SpectralReading),
		alerts:   make(map[uint]*models.Alert),
	}
}

// SeedDemoDevices registers the stock demo devices so the dashboard has
// something to show against the mock store.
func (s *MemoryStore) SeedDemoDevices() {
	for i, id := range []string{"LACTEVA_001", "LACTEVA_002", "LACTEVA_003"} {
		s.UpsertDevice(&models.Device{
			DeviceID:        id,
			Name:            "Demo unit " + id[strings.LastIndex(id, "_")+1:],
			Location:        []string{"Cold room A", "Cold room B", "Receiving dock"}[i],
			Status:          models.StatusOffline,
			FirmwareVersion: "1.2.0",
			Settings:        models.DefaultAlertSettings(),
		})
	}
}

func (s *MemoryStore) CreateUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return ErrConflict
		}
	}
	s.nextUserID++
	u.ID = s.nextUserID
	if u.Role == "" {
		u.Role = models.RoleFieldOp
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) UserByID(id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) UserByUsername(username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Users() ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) UpdateUserRole(email, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			u.Role = role
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteUser(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) UpsertDevice(d *models.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if existing, ok := s.devices[d.DeviceID]; ok {
		d.CreatedAt = existing.CreatedAt
	} else if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	cp := *d
	s.devices[d.DeviceID] = &cp
	return nil
}

func (s *MemoryStore) DeviceByID(deviceID string) (*models.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[deviceID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *MemoryStore) Devices() ([]models.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Device, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}

func (s *MemoryStore) DeleteDevice(deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.devices, deviceID)
	return nil
}

func (s *MemoryStore) MarkStaleOffline(deadline time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var flipped int64
	for _, d := range s.devices {
		if d.Status != models.StatusOffline && d.LastSeen.Before(deadline) {
			d.Status = models.StatusOffline
			d.UpdatedAt = time.Now()
			flipped++
		}
	}
	return flipped, nil
}

func (s *MemoryStore) CreateReading(r *models.SpectralReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextReadingID++
	r.ID = s.nextReadingID
	cp := *r
	s.readings[r.ID] = &cp
	return nil
}

func (s *MemoryStore) ReadingByID(id uint) (*models.SpectralReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.readings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func matchesReading(r *models.SpectralReading, f ReadingFilter) bool {
	if f.DeviceID != "" && r.DeviceID != f.DeviceID {
		return false
	}
	if f.DeviceIDs != nil {
		found := false
		for _, id := range f.DeviceIDs {
			if r.DeviceID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Since != nil && r.Timestamp.Before(*f.Since) {
		return false
	}
	if f.Until != nil && r.Timestamp.After(*f.Until) {
		return false
	}
	return true
}

func (s *MemoryStore) Readings(f ReadingFilter) ([]models.SpectralReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SpectralReading
	for _, r := range s.readings {
		if matchesReading(r, f) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) LatestReading(deviceID string) (*models.SpectralReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.SpectralReading
	for _, r := range s.readings {
		if r.DeviceID != deviceID {
			continue
		}
		if latest == nil || r.Timestamp.After(latest.Timestamp) {
			latest = r
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *MemoryStore) UpdateReading(r *models.SpectralReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.readings[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	s.readings[r.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteReading(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.readings[id]; !ok {
		return ErrNotFound
	}
	delete(s.readings, id)
	return nil
}

func (s *MemoryStore) DeleteAllReadings() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = make(map[uint]*models.SpectralReading)
	return nil
}

func (s *MemoryStore) CreateAlert(a *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAlertID++
	a.ID = s.nextAlertID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	cp := *a
	s.alerts[a.ID] = &cp
	return nil
}

func (s *MemoryStore) AlertByID(id uint) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func matchesAlert(a *models.Alert, f AlertFilter) bool {
	if f.DeviceID != "" && a.DeviceID != f.DeviceID {
		return false
	}
	if f.DeviceIDs != nil {
		found := false
		for _, id := range f.DeviceIDs {
			if a.DeviceID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Acknowledged != nil && a.Acknowledged != *f.Acknowledged {
		return false
	}
	return true
}

func (s *MemoryStore) Alerts(f AlertFilter) ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Alert
	for _, a := range s.alerts {
		if matchesAlert(a, f) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) AcknowledgeAlert(id uint, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return ErrNotFound
	}
	a.Acknowledged = true
	a.AcknowledgedAt = &at
	return nil
}

func (s *MemoryStore) CountUnacknowledged(deviceIDs []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, a := range s.alerts {
		if a.Acknowledged {
			continue
		}
		if deviceIDs != nil {
			found := false
			for _, id := range deviceIDs {
				if a.DeviceID == id {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		count++
	}
	return count, nil
}

func (s *MemoryStore) CreateBatchAnalysis(b *models.BatchAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	s.batches = append(s.batches, *b)
	return nil
}

func (s *MemoryStore) BatchAnalyses(deviceID string) ([]models.BatchAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BatchAnalysis
	for _, b := range s.batches {
		if deviceID == "" || b.DeviceID == deviceID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Ping() error {
	return nil
}
