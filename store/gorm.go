package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/keerthana1830/Lacteva/models"
)

// GormStore backs the API with PostgreSQL through gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate runs the schema migrations for all persisted entities.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Device{},
		&models.SpectralReading{},
		&models.Alert{},
		&models.BatchAnalysis{},
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) CreateUser(u *models.User) error {
	return s.db.Create(u).Error
}

func (s *GormStore) UserByID(id uint) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *GormStore) UserByUsername(username string) (*models.User, error) {
	var u models.User
	if err := s.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *GormStore) Users() ([]models.User, error) {
	var users []models.User
	if err := s.db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *GormStore) UpdateUser(u *models.User) error {
	return s.db.Save(u).Error
}

func (s *GormStore) UpdateUserRole(email, role string) error {
	res := s.db.Model(&models.User{}).Where("email = ?", email).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteUser(id uint) error {
	return s.db.Delete(&models.User{}, id).Error
}

func (s *GormStore) UpsertDevice(d *models.Device) error {
	return s.db.Save(d).Error
}

func (s *GormStore) DeviceByID(deviceID string) (*models.Device, error) {
	var d models.Device
	if err := s.db.First(&d, "device_id = ?", deviceID).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (s *GormStore) Devices() ([]models.Device, error) {
	var devices []models.Device
	if err := s.db.Order("device_id").Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (s *GormStore) DeleteDevice(deviceID string) error {
	return s.db.Delete(&models.Device{}, "device_id = ?", deviceID).Error
}

func (s *GormStore) MarkStaleOffline(deadline time.Time) (int64, error) {
	res := s.db.Model(&models.Device{}).
		Where("status IN ? AND last_seen < ?", []string{models.StatusOnline, models.StatusSyncing}, deadline).
		Update("status", models.StatusOffline)
	return res.RowsAffected, res.Error
}

func (s *GormStore) CreateReading(r *models.SpectralReading) error {
	return s.db.Create(r).Error
}

func (s *GormStore) ReadingByID(id uint) (*models.SpectralReading, error) {
	var r models.SpectralReading
	if err := s.db.First(&r, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *GormStore) Readings(f ReadingFilter) ([]models.SpectralReading, error) {
	q := s.db.Order("timestamp desc")
	if f.DeviceID != "" {
		q = q.Where("device_id = ?", f.DeviceID)
	}
	if f.DeviceIDs != nil {
		q = q.Where("device_id IN ?", f.DeviceIDs)
	}
	if f.Since != nil {
		q = q.Where("timestamp >= ?", *f.Since)
	}
	if f.Until != nil {
		q = q.Where("timestamp <= ?", *f.Until)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var readings []models.SpectralReading
	if err := q.Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

func (s *GormStore) LatestReading(deviceID string) (*models.SpectralReading, error) {
	var r models.SpectralReading
	err := s.db.Where("device_id = ?", deviceID).Order("timestamp desc").First(&r).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *GormStore) UpdateReading(r *models.SpectralReading) error {
	return s.db.Save(r).Error
}

func (s *GormStore) DeleteReading(id uint) error {
	res := s.db.Delete(&models.SpectralReading{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteAllReadings() error {
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.SpectralReading{}).Error
}

func (s *GormStore) CreateAlert(a *models.Alert) error {
	return s.db.Create(a).Error
}

func (s *GormStore) AlertByID(id uint) (*models.Alert, error) {
	var a models.Alert
	if err := s.db.First(&a, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *GormStore) Alerts(f AlertFilter) ([]models.Alert, error) {
	q := s.db.Order("created_at desc")
	if f.DeviceID != "" {
		q = q.Where("device_id = ?", f.DeviceID)
	}
	if f.DeviceIDs != nil {
		q = q.Where("device_id IN ?", f.DeviceIDs)
	}
	if f.Acknowledged != nil {
		q = q.Where("acknowledged = ?", *f.Acknowledged)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var alerts []models.Alert
	if err := q.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (s *GormStore) AcknowledgeAlert(id uint, at time.Time) error {
	res := s.db.Model(&models.Alert{}).Where("id = ?", id).
		Updates(map[string]interface{}{"acknowledged": true, "acknowledged_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CountUnacknowledged(deviceIDs []string) (int64, error) {
	q := s.db.Model(&models.Alert{}).Where("acknowledged = ?", false)
	if deviceIDs != nil {
		q = q.Where("device_id IN ?", deviceIDs)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (s *GormStore) CreateBatchAnalysis(b *models.BatchAnalysis) error {
	return s.db.Create(b).Error
}

func (s *GormStore) BatchAnalyses(deviceID string) ([]models.BatchAnalysis, error) {
	q := s.db.Order("created_at desc")
	if deviceID != "" {
		q = q.Where("device_id = ?", deviceID)
	}
	var analyses []models.BatchAnalysis
	if err := q.Find(&analyses).Error; err != nil {
		return nil, err
	}
	return analyses, nil
}

func (s *GormStore) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
