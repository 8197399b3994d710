package models

const (
	RoleAdmin   = "admin"
	RoleLabTech = "lab_tech"
	RoleFieldOp = "field_op"
)

// Preferences holds per-user dashboard settings.
type Preferences struct {
	Theme       string `json:"theme"`
	DefaultView string `json:"default_view"`
}

// StringList is a JSON-serialized list of device IDs.
type StringList []string

// Contains reports whether the list holds the given ID.
func (l StringList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

type User struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	Username    string      `json:"username" gorm:"unique;not null"`
	Email       string      `json:"email" gorm:"unique;not null"`
	Password    string      `json:"-"` // Store hashed password
	Role        string      `json:"role" gorm:"default:field_op"`
	Devices     StringList  `json:"devices" gorm:"serializer:json"`
	Preferences Preferences `json:"preferences" gorm:"serializer:json"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanSeeDevice reports whether the user may read data from the device.
func (u *User) CanSeeDevice(deviceID string) bool {
	return u.IsAdmin() || u.Devices.Contains(deviceID)
}
