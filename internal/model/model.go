package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Scenario{},
	&ScenarioAnchor{},
	&PlaySession{},
	&GameEvent{},
	&PoseSample{},
}

////////////////////////
// AUTHORING MODELS
////////////////////////

// Scenario is a saved layout, addressed by name
type Scenario struct {
	gorm.Model
	Name    string           `json:"name" gorm:"size:127;uniqueIndex"`
	Anchors []ScenarioAnchor `json:"anchors" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (*Scenario) TableName() string {
	return "scenarios"
}

// ScenarioAnchor holds one anchor record of a scenario in file order. The
// record itself is kept verbatim as JSON so the file and database backends
// round-trip the same bytes.
type ScenarioAnchor struct {
	ID         uint           `json:"id" gorm:"primarykey"`
	ScenarioID uint           `json:"scenarioId" gorm:"index:idx_scenario_anchor_order,priority:1"`
	Ordinal    int            `json:"ordinal" gorm:"index:idx_scenario_anchor_order,priority:2"`
	Name       string         `json:"name" gorm:"size:64"`
	CloudID    string         `json:"cloudId" gorm:"size:255"`
	Objects    int            `json:"objects"`
	Record     datatypes.JSON `json:"record"`
}

func (*ScenarioAnchor) TableName() string {
	return "scenario_anchors"
}

////////////////////////
// GAMEPLAY MODELS
////////////////////////

// PlaySession is one play-through of a scenario
type PlaySession struct {
	ID             string       `json:"id" gorm:"primaryKey;size:36"`
	Scenario       string       `json:"scenario" gorm:"size:127;index"`
	Mode           string       `json:"mode" gorm:"size:16"`
	StartTime      time.Time    `json:"startTime" gorm:"index:idx_session_start"`
	EndTime        time.Time    `json:"endTime"`
	Minutes        int          `json:"minutes"`
	Seconds        int          `json:"seconds"`
	NumCheckpoints int          `json:"numCheckpoints"`
	Score          int          `json:"score"`
	Events         []GameEvent  `gorm:"foreignkey:SessionID;constraint:OnDelete:CASCADE;"`
	Poses          []PoseSample `gorm:"foreignkey:SessionID;constraint:OnDelete:CASCADE;"`
}

func (*PlaySession) TableName() string {
	return "play_sessions"
}

// GameEvent is a scored or announced event of a session
type GameEvent struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	SessionID string         `json:"sessionId" gorm:"size:36;index:idx_game_event_session"`
	Time      time.Time      `json:"time" gorm:"index:idx_game_event_time"`
	Type      string         `json:"type" gorm:"size:32"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Z         float64        `json:"z"`
	Delta     int            `json:"delta"`
	State     datatypes.JSON `json:"state"`
}

func (*GameEvent) TableName() string {
	return "game_events"
}

// PoseSample is the player's tracked pose at a point in time
type PoseSample struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	SessionID string    `json:"sessionId" gorm:"size:36;index:idx_pose_session"`
	Time      time.Time `json:"time"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
	Pitch     float64   `json:"pitch"`
	Yaw       float64   `json:"yaw"`
	Roll      float64   `json:"roll"`
}

func (*PoseSample) TableName() string {
	return "pose_samples"
}
