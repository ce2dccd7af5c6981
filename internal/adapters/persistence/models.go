// Package persistence implements the repository ports on gorm. Each
// aggregate maps to a model struct with explicit domain conversion both
// ways; JSON text columns carry the nested value objects (queues, garrison,
// build progress).
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stellardrift/stellardrift-go/internal/domain/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/fleet"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/player"
	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// UserModel is the gorm model for users
type UserModel struct {
	ID         int `gorm:"primaryKey"`
	Name       string
	Credits    float64
	DarkMatter float64
	XP         int
	Level      int
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) ToDomain() *player.User {
	return &player.User{
		ID:         m.ID,
		Name:       m.Name,
		Credits:    m.Credits,
		DarkMatter: m.DarkMatter,
		XP:         m.XP,
		Level:      m.Level,
		Version:    m.Version,
	}
}

func userToModel(u *player.User) *UserModel {
	return &UserModel{
		ID:         u.ID,
		Name:       u.Name,
		Credits:    u.Credits,
		DarkMatter: u.DarkMatter,
		XP:         u.XP,
		Level:      u.Level,
		Version:    u.Version,
	}
}

// NotificationModel is the gorm model for user notifications
type NotificationModel struct {
	ID        int `gorm:"primaryKey;autoIncrement"`
	UserID    int `gorm:"index"`
	Kind      string
	Message   string
	CreatedAt int64
}

func (NotificationModel) TableName() string { return "notifications" }

func (m *NotificationModel) ToDomain() *player.Notification {
	return &player.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Kind:      m.Kind,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}

// PlanetModel is the gorm model for the planet aggregate root
type PlanetModel struct {
	ID     uint `gorm:"primaryKey;autoIncrement"`
	UserID int  `gorm:"index"`
	NPC    bool

	X          int
	Y          int
	GridWidth  int
	GridHeight int

	Carbon             float64
	Titanium           float64
	Food               float64
	TaxRate            int
	LastResourceUpdate time.Time

	ConstructionBuildingID *uint
	ConstructionFinishTime *time.Time

	Tools              string // JSON map toolType -> count
	RecruitmentQueue   string // JSON array of queue entries
	ManufacturingQueue string
	TurretQueue        string

	DefenseLevel int
	AttackCount  int
	Version      int

	Buildings []BuildingModel   `gorm:"foreignKey:PlanetID"`
	Units     []PlanetUnitModel `gorm:"foreignKey:PlanetID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PlanetModel) TableName() string { return "planets" }

func (m *PlanetModel) ToDomain() (*planet.Planet, error) {
	p := &planet.Planet{
		ID:                 m.ID,
		UserID:             m.UserID,
		NPC:                m.NPC,
		Position:           shared.Position{X: float64(m.X), Y: float64(m.Y)},
		GridWidth:          m.GridWidth,
		GridHeight:         m.GridHeight,
		Carbon:             m.Carbon,
		Titanium:           m.Titanium,
		Food:               m.Food,
		TaxRate:            m.TaxRate,
		LastResourceUpdate: m.LastResourceUpdate,
		DefenseLevel:       m.DefenseLevel,
		AttackCount:        m.AttackCount,
		Version:            m.Version,
	}
	if m.ConstructionBuildingID != nil && m.ConstructionFinishTime != nil {
		p.Construction = &planet.ConstructionSlot{
			BuildingID: *m.ConstructionBuildingID,
			FinishTime: *m.ConstructionFinishTime,
		}
	}
	if err := decodeAmounts(m.Tools, &p.Tools); err != nil {
		return nil, fmt.Errorf("planet %d tools: %w", m.ID, err)
	}
	var err error
	if p.RecruitmentQueue, err = planet.ParseQueue(m.RecruitmentQueue); err != nil {
		return nil, fmt.Errorf("planet %d: %w", m.ID, err)
	}
	if p.ManufacturingQueue, err = planet.ParseQueue(m.ManufacturingQueue); err != nil {
		return nil, fmt.Errorf("planet %d: %w", m.ID, err)
	}
	if p.TurretQueue, err = planet.ParseQueue(m.TurretQueue); err != nil {
		return nil, fmt.Errorf("planet %d: %w", m.ID, err)
	}
	for i := range m.Buildings {
		p.Buildings = append(p.Buildings, m.Buildings[i].ToDomain())
	}
	for i := range m.Units {
		p.Units = append(p.Units, m.Units[i].ToDomain())
	}
	return p, nil
}

func planetToModel(p *planet.Planet) (*PlanetModel, error) {
	m := &PlanetModel{
		ID:                 p.ID,
		UserID:             p.UserID,
		NPC:                p.NPC,
		X:                  int(p.Position.X),
		Y:                  int(p.Position.Y),
		GridWidth:          p.GridWidth,
		GridHeight:         p.GridHeight,
		Carbon:             p.Carbon,
		Titanium:           p.Titanium,
		Food:               p.Food,
		TaxRate:            p.TaxRate,
		LastResourceUpdate: p.LastResourceUpdate,
		DefenseLevel:       p.DefenseLevel,
		AttackCount:        p.AttackCount,
		Version:            p.Version,
	}
	if p.Construction != nil {
		id := p.Construction.BuildingID
		t := p.Construction.FinishTime
		m.ConstructionBuildingID = &id
		m.ConstructionFinishTime = &t
	}
	var err error
	if m.Tools, err = encodeAmounts(p.Tools); err != nil {
		return nil, fmt.Errorf("planet %d tools: %w", p.ID, err)
	}
	if m.RecruitmentQueue, err = planet.EncodeQueue(p.RecruitmentQueue); err != nil {
		return nil, fmt.Errorf("planet %d: %w", p.ID, err)
	}
	if m.ManufacturingQueue, err = planet.EncodeQueue(p.ManufacturingQueue); err != nil {
		return nil, fmt.Errorf("planet %d: %w", p.ID, err)
	}
	if m.TurretQueue, err = planet.EncodeQueue(p.TurretQueue); err != nil {
		return nil, fmt.Errorf("planet %d: %w", p.ID, err)
	}
	for _, b := range p.Buildings {
		m.Buildings = append(m.Buildings, buildingToModel(b))
	}
	for _, u := range p.Units {
		m.Units = append(m.Units, unitToModel(u))
	}
	return m, nil
}

// BuildingModel is the gorm model for planet buildings
type BuildingModel struct {
	ID       uint `gorm:"primaryKey;autoIncrement"`
	PlanetID uint `gorm:"index"`
	Type     string
	Level    int
	X        int
	Y        int
	Status   string
}

func (BuildingModel) TableName() string { return "buildings" }

func (m *BuildingModel) ToDomain() *planet.Building {
	return &planet.Building{
		ID:       m.ID,
		PlanetID: m.PlanetID,
		Type:     m.Type,
		Level:    m.Level,
		X:        m.X,
		Y:        m.Y,
		Status:   planet.BuildingStatus(m.Status),
	}
}

func buildingToModel(b *planet.Building) BuildingModel {
	return BuildingModel{
		ID:       b.ID,
		PlanetID: b.PlanetID,
		Type:     b.Type,
		Level:    b.Level,
		X:        b.X,
		Y:        b.Y,
		Status:   string(b.Status),
	}
}

// PlanetUnitModel is the gorm model for stationed units
type PlanetUnitModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	PlanetID  uint   `gorm:"index:idx_planet_unit,unique"`
	UnitType  string `gorm:"index:idx_planet_unit,unique"`
	Count     int
	Defending int
}

func (PlanetUnitModel) TableName() string { return "planet_units" }

func (m *PlanetUnitModel) ToDomain() *planet.PlanetUnit {
	return &planet.PlanetUnit{
		PlanetID:  m.PlanetID,
		UnitType:  m.UnitType,
		Count:     m.Count,
		Defending: m.Defending,
	}
}

func unitToModel(u *planet.PlanetUnit) PlanetUnitModel {
	return PlanetUnitModel{
		PlanetID:  u.PlanetID,
		UnitType:  u.UnitType,
		Count:     u.Count,
		Defending: u.Defending,
	}
}

// FleetModel is the gorm model for fleets
type FleetModel struct {
	ID           string `gorm:"primaryKey"`
	UserID       int    `gorm:"index"`
	Mission      string
	Status       string `gorm:"index"`
	OriginID     uint
	TargetID     uint
	TargetShipID string

	Units           string // JSON map unitType -> count
	Tools           string
	Loot            string
	BorrowedDefense string

	DepartedAt  time.Time
	ArrivalTime time.Time
	ReturnTime  time.Time

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (FleetModel) TableName() string { return "fleets" }

func (m *FleetModel) ToDomain() (*fleet.Fleet, error) {
	f := &fleet.Fleet{
		ID:           m.ID,
		UserID:       m.UserID,
		Mission:      fleet.Mission(m.Mission),
		Status:       fleet.Status(m.Status),
		OriginID:     m.OriginID,
		TargetID:     m.TargetID,
		TargetShipID: m.TargetShipID,
		DepartedAt:   m.DepartedAt,
		ArrivalTime:  m.ArrivalTime,
		ReturnTime:   m.ReturnTime,
		Version:      m.Version,
	}
	for _, col := range []struct {
		raw  string
		dest *shared.Amounts
	}{
		{m.Units, &f.Units},
		{m.Tools, &f.Tools},
		{m.Loot, &f.Loot},
		{m.BorrowedDefense, &f.BorrowedDefense},
	} {
		if err := decodeAmounts(col.raw, col.dest); err != nil {
			return nil, fmt.Errorf("fleet %s: %w", m.ID, err)
		}
	}
	return f, nil
}

func fleetToModel(f *fleet.Fleet) (*FleetModel, error) {
	m := &FleetModel{
		ID:           f.ID,
		UserID:       f.UserID,
		Mission:      string(f.Mission),
		Status:       string(f.Status),
		OriginID:     f.OriginID,
		TargetID:     f.TargetID,
		TargetShipID: f.TargetShipID,
		DepartedAt:   f.DepartedAt,
		ArrivalTime:  f.ArrivalTime,
		ReturnTime:   f.ReturnTime,
		Version:      f.Version,
	}
	var err error
	if m.Units, err = encodeAmounts(f.Units); err != nil {
		return nil, fmt.Errorf("fleet %s: %w", f.ID, err)
	}
	if m.Tools, err = encodeAmounts(f.Tools); err != nil {
		return nil, fmt.Errorf("fleet %s: %w", f.ID, err)
	}
	if m.Loot, err = encodeAmounts(f.Loot); err != nil {
		return nil, fmt.Errorf("fleet %s: %w", f.ID, err)
	}
	if m.BorrowedDefense, err = encodeAmounts(f.BorrowedDefense); err != nil {
		return nil, fmt.Errorf("fleet %s: %w", f.ID, err)
	}
	return m, nil
}

// BattleReportModel is the gorm model for battle reports
type BattleReportModel struct {
	ID             string `gorm:"primaryKey"`
	FleetID        string
	AttackerUserID int `gorm:"index"`
	DefenderUserID int `gorm:"index"`
	TargetPlanetID uint
	Winner         string
	AttackerLosses string
	DefenderLosses string
	Loot           string
	FoughtAt       time.Time
}

func (BattleReportModel) TableName() string { return "battle_reports" }

func (m *BattleReportModel) ToDomain() (*fleet.BattleReport, error) {
	r := &fleet.BattleReport{
		ID:             m.ID,
		FleetID:        m.FleetID,
		AttackerUserID: m.AttackerUserID,
		DefenderUserID: m.DefenderUserID,
		TargetPlanetID: m.TargetPlanetID,
		Winner:         m.Winner,
		FoughtAt:       m.FoughtAt,
	}
	if err := decodeAmounts(m.AttackerLosses, &r.AttackerLosses); err != nil {
		return nil, fmt.Errorf("battle report %s: %w", m.ID, err)
	}
	if err := decodeAmounts(m.DefenderLosses, &r.DefenderLosses); err != nil {
		return nil, fmt.Errorf("battle report %s: %w", m.ID, err)
	}
	if err := decodeAmounts(m.Loot, &r.Loot); err != nil {
		return nil, fmt.Errorf("battle report %s: %w", m.ID, err)
	}
	return r, nil
}

// CapitalShipModel is the gorm model for capital ships
type CapitalShipModel struct {
	ID     string `gorm:"primaryKey"`
	UserID int    `gorm:"index"`
	Name   string
	Status string

	HP    float64
	MaxHP float64

	HomePlanetID   uint
	TargetPlanetID uint
	X              float64
	Y              float64

	CommitmentDays   int
	CommitmentEndsAt *time.Time
	RecallEligible   bool
	CooldownUntil    *time.Time
	LastHealTime     time.Time

	HighestPhaseCompleted int
	Progress              *string // JSON build-progress record, null when idle
	Garrison              string  // JSON garrison record

	ArrivalTime *time.Time

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CapitalShipModel) TableName() string { return "capital_ships" }

func (m *CapitalShipModel) ToDomain() (*capitalship.CapitalShip, error) {
	s := &capitalship.CapitalShip{
		ID:                    m.ID,
		UserID:                m.UserID,
		Name:                  m.Name,
		Status:                capitalship.Status(m.Status),
		HP:                    m.HP,
		MaxHP:                 m.MaxHP,
		HomePlanetID:          m.HomePlanetID,
		TargetPlanetID:        m.TargetPlanetID,
		Position:              shared.Position{X: m.X, Y: m.Y},
		CommitmentDays:        m.CommitmentDays,
		CommitmentEndsAt:      m.CommitmentEndsAt,
		RecallEligible:        m.RecallEligible,
		CooldownUntil:         m.CooldownUntil,
		LastHealTime:          m.LastHealTime,
		HighestPhaseCompleted: m.HighestPhaseCompleted,
		ArrivalTime:           m.ArrivalTime,
		Version:               m.Version,
	}
	if m.Progress != nil && *m.Progress != "" {
		var progress capitalship.BuildProgress
		if err := json.Unmarshal([]byte(*m.Progress), &progress); err != nil {
			return nil, fmt.Errorf("capital ship %s: malformed progress: %w", m.ID, err)
		}
		s.Progress = &progress
	}
	if m.Garrison != "" {
		if err := json.Unmarshal([]byte(m.Garrison), &s.Garrison); err != nil {
			return nil, fmt.Errorf("capital ship %s: malformed garrison: %w", m.ID, err)
		}
	} else {
		s.Garrison = capitalship.NewGarrison()
	}
	return s, nil
}

func capitalShipToModel(s *capitalship.CapitalShip) (*CapitalShipModel, error) {
	m := &CapitalShipModel{
		ID:                    s.ID,
		UserID:                s.UserID,
		Name:                  s.Name,
		Status:                string(s.Status),
		HP:                    s.HP,
		MaxHP:                 s.MaxHP,
		HomePlanetID:          s.HomePlanetID,
		TargetPlanetID:        s.TargetPlanetID,
		X:                     s.Position.X,
		Y:                     s.Position.Y,
		CommitmentDays:        s.CommitmentDays,
		CommitmentEndsAt:      s.CommitmentEndsAt,
		RecallEligible:        s.RecallEligible,
		CooldownUntil:         s.CooldownUntil,
		LastHealTime:          s.LastHealTime,
		HighestPhaseCompleted: s.HighestPhaseCompleted,
		ArrivalTime:           s.ArrivalTime,
		Version:               s.Version,
	}
	if s.Progress != nil {
		data, err := json.Marshal(s.Progress)
		if err != nil {
			return nil, fmt.Errorf("capital ship %s: progress: %w", s.ID, err)
		}
		encoded := string(data)
		m.Progress = &encoded
	}
	data, err := json.Marshal(s.Garrison)
	if err != nil {
		return nil, fmt.Errorf("capital ship %s: garrison: %w", s.ID, err)
	}
	m.Garrison = string(data)
	return m, nil
}

// TaskModel is the gorm model for durable scheduled tasks
type TaskModel struct {
	ID          string `gorm:"primaryKey"`
	Kind        string `gorm:"index"`
	Payload     []byte
	RunAt       time.Time `gorm:"index:idx_tasks_due"`
	Status      string    `gorm:"index:idx_tasks_due"`
	Attempts    int
	MaxAttempts int
	LastError   string
	ClaimedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (TaskModel) TableName() string { return "tasks" }

func (m *TaskModel) ToDomain() *scheduler.Task {
	return &scheduler.Task{
		ID:          m.ID,
		Kind:        scheduler.Kind(m.Kind),
		Payload:     m.Payload,
		RunAt:       m.RunAt,
		Status:      scheduler.TaskStatus(m.Status),
		Attempts:    m.Attempts,
		MaxAttempts: m.MaxAttempts,
		LastError:   m.LastError,
		ClaimedAt:   m.ClaimedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func taskToModel(t *scheduler.Task) *TaskModel {
	return &TaskModel{
		ID:          t.ID,
		Kind:        string(t.Kind),
		Payload:     t.Payload,
		RunAt:       t.RunAt,
		Status:      string(t.Status),
		Attempts:    t.Attempts,
		MaxAttempts: t.MaxAttempts,
		LastError:   t.LastError,
		ClaimedAt:   t.ClaimedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func decodeAmounts(raw string, dest *shared.Amounts) error {
	if raw == "" {
		*dest = shared.Amounts{}
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("malformed amounts: %w", err)
	}
	if *dest == nil {
		*dest = shared.Amounts{}
	}
	return nil
}

func encodeAmounts(a shared.Amounts) (string, error) {
	if a == nil {
		return "{}", nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
