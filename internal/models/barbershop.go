package models

import "time"

type Barbershop struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Name              string `gorm:"size:100;not null" json:"name"`
	Slug              string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Phone             string `gorm:"size:20" json:"phone"`
	Address           string `gorm:"size:255" json:"address"`
	Timezone          string `gorm:"size:64" json:"timezone"`
	LogoURL           string `gorm:"size:255" json:"logo_url"`
	MinAdvanceMinutes int    `gorm:"default:120" json:"min_advance_minutes"`

	// Regras de remarcação por barbearia; zero = usa o padrão global.
	BufferMinutes int  `gorm:"default:15" json:"buffer_minutes"`
	WorkDayStart  int  `gorm:"default:8" json:"work_day_start"`
	WorkDayEnd    int  `gorm:"default:20" json:"work_day_end"`
	AllowAdjacent bool `gorm:"default:true" json:"allow_adjacent"`
	RiskThreshold int  `gorm:"default:30" json:"risk_threshold"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
