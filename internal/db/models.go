package db

import (
	"strconv"
	"time"
)

type Gender int

const (
	GenderFemale Gender = 1
	GenderMale   Gender = 2
	GenderOther  Gender = 3
)

var AllGenders = []Gender{GenderFemale, GenderMale, GenderOther}

type Diet int

const (
	DietUnknown    Diet = 0
	DietVegan      Diet = 1
	DietVegetarian Diet = 2
	DietCarnist    Diet = 3
)

var ValidDiets = []Diet{DietVegan, DietVegetarian, DietCarnist}

type SmokingStatus int

const (
	SmokingUnknown   SmokingStatus = 0
	SmokingNo        SmokingStatus = 1
	SmokingSometimes SmokingStatus = 2
	SmokingYes       SmokingStatus = 3
)

var ValidSmokingStatuses = []SmokingStatus{SmokingNo, SmokingSometimes, SmokingYes}

type RelationshipStatus int

const (
	RelationshipUnknown            RelationshipStatus = 0
	RelationshipSingle             RelationshipStatus = 1
	RelationshipDivorced           RelationshipStatus = 2
	RelationshipWidowed            RelationshipStatus = 3
	RelationshipInRelationship     RelationshipStatus = 4
	RelationshipInOpenRelationship RelationshipStatus = 5
	RelationshipComplicated        RelationshipStatus = 6
	RelationshipSeparated          RelationshipStatus = 7
	RelationshipEngaged            RelationshipStatus = 8
	RelationshipMarried            RelationshipStatus = 9
)

var ValidRelationshipStatuses = []RelationshipStatus{
	RelationshipSingle, RelationshipDivorced, RelationshipWidowed,
	RelationshipInRelationship, RelationshipInOpenRelationship, RelationshipComplicated,
	RelationshipSeparated, RelationshipEngaged, RelationshipMarried,
}

// Ranks stored in the compatibility tables.
const (
	Rank0 = 0
	Rank1 = 1
	Rank2 = 2
	Rank3 = 3
	Rank4 = 4
	Rank5 = 5
)

// User is owned by the accounts subsystem. Only the columns the ranking engine
// reads are mapped here.
type User struct {
	ID                    uint64 `gorm:"primaryKey;autoIncrement"`
	Username              string `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash          string `gorm:"size:255"`
	IsActive              bool   `gorm:"not null;index"`
	PhotoVisibleOnWebsite bool   `gorm:"not null"`
	Gender                Gender `gorm:"not null;index"`
	Diet                  Diet   `gorm:"not null;default:0"`
	SmokingStatus         SmokingStatus
	RelationshipStatus    RelationshipStatus
	DateOfBirth           time.Time `gorm:"not null;index"`
	Height                int       `gorm:"index"`
	FriendsCount          int       `gorm:"not null;default:0"`

	// Geolocation resolved from the last known IP address.
	Latitude      *float64
	Longitude     *float64
	GeoResolvedAt *time.Time

	// Per-language free text, keyed by language code.
	Descriptions      map[string]string `gorm:"type:text;serializer:json"`
	MatchDescriptions map[string]string `gorm:"type:text;serializer:json"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	MatchProfile *MatchProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Age returns the age in full years at the given moment.
func (u *User) Age(now time.Time) int {
	y1, m1, d1 := now.Date()
	y2, m2, d2 := u.DateOfBirth.Date()
	age := y1 - y2
	if m1 < m2 || (m1 == m2 && d1 < d2) {
		age--
	}
	return age
}

// MatchProfile is one-to-one with User and holds the match preferences.
//
// Compatibility tables map the *other* person's enum value (as a string) to a rank 1-5.
// At least one entry of every table must be Rank5; ValidateMatchProfile enforces it.
type MatchProfile struct {
	UserID                     uint64    `gorm:"primaryKey;autoIncrement:false"`
	LastVisit                  time.Time `gorm:"not null;index:idx_last_visit,sort:desc"`
	ActiveLanguages            StringSet `gorm:"size:64" validate:"dive,len=2"`
	GenderToMatch              IntSet    `gorm:"size:32" validate:"min=1,dive,oneof=1 2 3"`
	MinAgeToMatch              int       `gorm:"not null" validate:"gte=0,lte=180"`
	MaxAgeToMatch              int       `gorm:"not null" validate:"gte=0,lte=180,gtefield=MinAgeToMatch"`
	DietMatch                  RankTable `gorm:"type:json;serializer:json" validate:"has_rank5,dive,keys,numeric,endkeys,gte=0,lte=5"`
	SmokingStatusMatch         RankTable `gorm:"type:json;serializer:json" validate:"has_rank5,dive,keys,numeric,endkeys,gte=0,lte=5"`
	RelationshipStatusMatch    RankTable `gorm:"type:json;serializer:json" validate:"has_rank5,dive,keys,numeric,endkeys,gte=0,lte=5"`
	NotAllowedToUseSpeedyMatch bool      `gorm:"not null;index"`
	NumberOfMatches            int       `gorm:"not null;default:0"`
	ProfilePictureMonthsOffset int       `gorm:"not null" validate:"oneof=0 5"`
	CreatedAt                  time.Time `gorm:"autoCreateTime"`
	UpdatedAt                  time.Time `gorm:"autoUpdateTime"`

	// Rank is set while scoring and never persisted.
	Rank int `gorm:"-"`
}

// IsActive is true iff the account is active and the language is activated.
func (p *MatchProfile) IsActive(u *User, language string) bool {
	return u != nil && u.IsActive && p.ActiveLanguages.Contains(language)
}

// RankTable maps an enum value (decimal string) to a rank.
type RankTable map[string]int

// RankFor returns the rank stored for value, or Rank0 when absent.
func (t RankTable) RankFor(value int) int {
	if t == nil {
		return Rank0
	}
	return t[strconv.Itoa(value)]
}

// AcceptedValues returns the enum values with a rank of at least Rank1.
func (t RankTable) AcceptedValues() []int {
	out := make([]int, 0, len(t))
	for k, r := range t {
		if r < Rank1 {
			continue
		}
		if v, err := strconv.Atoi(k); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// FullRankTable returns a table giving Rank5 to every value.
func FullRankTable[T ~int](values []T) RankTable {
	t := make(RankTable, len(values))
	for _, v := range values {
		t[strconv.Itoa(int(v))] = Rank5
	}
	return t
}

// NewMatchProfile returns the defaults used by get-or-create.
func NewMatchProfile(userID uint64, now time.Time) *MatchProfile {
	genders := make(IntSet, 0, len(AllGenders))
	for _, g := range AllGenders {
		genders = append(genders, int(g))
	}
	return &MatchProfile{
		UserID:                     userID,
		LastVisit:                  now,
		ActiveLanguages:            StringSet{},
		GenderToMatch:              genders,
		MinAgeToMatch:              12,
		MaxAgeToMatch:              180,
		DietMatch:                  FullRankTable(ValidDiets),
		SmokingStatusMatch:         FullRankTable(ValidSmokingStatuses),
		RelationshipStatusMatch:    FullRankTable(ValidRelationshipStatuses),
		ProfilePictureMonthsOffset: 5,
	}
}

// Like is a Speedy Match like from one user to another.
//
// Composite PK: (FromUserID, ToUserID).
// idx_to_user_created(to_user_id, created_at DESC, from_user_id) serves the
// "likes received" list and the per-candidate counts.
type Like struct {
	FromUserID uint64    `gorm:"primaryKey;index:idx_to_user_created,priority:3"`
	ToUserID   uint64    `gorm:"primaryKey;index:idx_to_user_created,priority:1"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_to_user_created,priority:2,sort:desc"`
}

// Block is directional; the ranking engine treats it symmetrically.
type Block struct {
	BlockerID uint64    `gorm:"primaryKey"`
	BlockedID uint64    `gorm:"primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
