package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TriageSession is the durable row for authenticated owners. Messages and
// the SOAP note travel as JSONB: the conversation is only ever read and
// written whole, so relational message rows buy nothing here.
type TriageSession struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;index"`
	SessionName string         `gorm:"type:text;not null"`
	PetName     string         `gorm:"type:varchar(255);not null"`
	Region      string         `gorm:"type:varchar(2);not null"`
	Messages    datatypes.JSON `gorm:"type:jsonb"`
	Severity    string         `gorm:"type:varchar(10)"`
	SoapNote    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (TriageSession) TableName() string {
	return "triage_sessions"
}
