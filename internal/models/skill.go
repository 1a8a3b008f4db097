package models

import "time"

// Skill describes one callable marketplace capability: a remote HTTP endpoint
// with a price, a publisher, and a usage counter.
//
// Name is the public identifier; registering an existing name replaces the
// metadata columns but never ID, UsageCount, or CreatedAt. Endpoint may carry
// one ":placeholder" path segment substituted at call time. Port is the skill
// server's listen port used by health probes, independent of any port embedded
// in Endpoint.
type Skill struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"uniqueIndex;not null" json:"name"`
	Description     string    `gorm:"not null" json:"description"`
	Endpoint        string    `gorm:"not null" json:"endpoint"`
	PriceUSD        float64   `gorm:"column:price_usd;not null" json:"price_usd"`
	PublisherWallet string    `gorm:"not null" json:"publisher_wallet"`
	Category        string    `gorm:"not null" json:"category"`
	Port            int       `gorm:"not null" json:"port"`
	UsageCount      int64     `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName pins the table name regardless of gorm's pluralisation rules.
func (Skill) TableName() string {
	return "skills"
}
