package models

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID                uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name              string    `json:"name" gorm:"not null"`
	Email             string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash      string    `json:"-" gorm:"not null"`
	Role              Role      `json:"role" gorm:"not null;default:user"`
	GreenScore        int       `json:"greenScore" gorm:"not null;default:0"`
	TotalTransactions int       `json:"totalTransactions" gorm:"not null;default:0"`
	ProfileImage      string    `json:"profileImage"`
	IsActive          bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt         time.Time `json:"createdAt"`
}

type ApplianceStatus string

const (
	ApplianceOff ApplianceStatus = "off"
	ApplianceOn  ApplianceStatus = "on"
)

type ApplianceCategory string

const (
	CategoryKitchen ApplianceCategory = "Kitchen"
	CategoryLiving  ApplianceCategory = "Living"
	CategoryBedroom ApplianceCategory = "Bedroom"
	CategoryOther   ApplianceCategory = "Other"
)

func ParseApplianceCategory(s string) (ApplianceCategory, error) {
	switch ApplianceCategory(s) {
	case CategoryKitchen, CategoryLiving, CategoryBedroom, CategoryOther:
		return ApplianceCategory(s), nil
	case "":
		return CategoryOther, nil
	}
	return "", fmt.Errorf("invalid appliance category %q", s)
}

type Appliance struct {
	ID            uint              `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        uint              `json:"userId" gorm:"index;not null"`
	Name          string            `json:"name" gorm:"not null"`
	Wattage       float64           `json:"wattage" gorm:"not null"`
	Category      ApplianceCategory `json:"category" gorm:"not null;default:Other"`
	Status        ApplianceStatus   `json:"status" gorm:"not null;default:off"`
	LastStartTime *time.Time        `json:"lastStartTime"`
	// Accrued since appliance creation or the last explicit reset.
	TotalKwhThisMonth float64        `json:"totalKwhThisMonth" gorm:"not null;default:0"`
	HoursPerDay       float64        `json:"hoursPerDay" gorm:"not null;default:0"`
	DaysPerMonth      float64        `json:"daysPerMonth" gorm:"not null;default:0"`
	UsageSessions     []UsageSession `json:"usageSessions" gorm:"foreignKey:ApplianceID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time      `json:"createdAt"`
}

type UsageSession struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ApplianceID uint      `json:"applianceId" gorm:"index;not null"`
	StartTime   time.Time `json:"startTime" gorm:"not null"`
	EndTime     time.Time `json:"endTime" gorm:"not null"`
	KwhUsed     float64   `json:"kwhUsed" gorm:"not null;default:0"`
}

type Tariff struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	BlockName   string    `json:"blockName" gorm:"not null"`
	MinUnits    float64   `json:"minUnits" gorm:"not null"`
	MaxUnits    *float64  `json:"maxUnits"` // nil means unlimited
	UnitRate    float64   `json:"unitRate" gorm:"not null"`
	FixedCharge float64   `json:"fixedCharge" gorm:"not null"`
	IsActive    bool      `json:"isActive" gorm:"not null;default:true"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ItemCondition string

const (
	ConditionNew  ItemCondition = "New"
	ConditionGood ItemCondition = "Good"
	ConditionFair ItemCondition = "Fair"
)

func ParseItemCondition(s string) (ItemCondition, error) {
	switch ItemCondition(s) {
	case ConditionNew, ConditionGood, ConditionFair:
		return ItemCondition(s), nil
	case "":
		return ConditionGood, nil
	}
	return "", fmt.Errorf("invalid condition %q", s)
}

type ListingType string

const (
	ListingFree  ListingType = "Free"
	ListingTrade ListingType = "Trade"
)

func ParseListingType(s string) (ListingType, error) {
	switch ListingType(s) {
	case ListingFree, ListingTrade:
		return ListingType(s), nil
	case "":
		return ListingFree, nil
	}
	return "", fmt.Errorf("invalid listing type %q", s)
}

type ItemStatus string

const (
	ItemAvailable ItemStatus = "available"
	ItemReserved  ItemStatus = "reserved"
	ItemCompleted ItemStatus = "completed"
)

type MarketItem struct {
	ID          uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	OwnerID     uint          `json:"ownerId" gorm:"index;not null"`
	Title       string        `json:"title" gorm:"not null"`
	Description string        `json:"description"`
	Category    string        `json:"category" gorm:"not null"`
	ImageURL    string        `json:"imageUrl"`
	Condition   ItemCondition `json:"condition" gorm:"not null;default:Good"`
	ListingType ListingType   `json:"listingType" gorm:"not null;default:Free"`
	Status      ItemStatus    `json:"status" gorm:"not null;default:available"`
	ClaimedBy   *uint         `json:"claimedBy"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionRejected  TransactionStatus = "rejected"
	TransactionCompleted TransactionStatus = "completed"
)

type MarketTransaction struct {
	ID          uint              `json:"id" gorm:"primaryKey;autoIncrement"`
	Reference   string            `json:"reference" gorm:"uniqueIndex;not null"`
	ItemID      uint              `json:"itemId" gorm:"index;not null"`
	SellerID    uint              `json:"sellerId" gorm:"index;not null"`
	BuyerID     uint              `json:"buyerId" gorm:"index;not null"`
	Status      TransactionStatus `json:"status" gorm:"not null;default:pending"`
	CompletedAt *time.Time        `json:"completedAt"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type WasteType string

const (
	WastePlastic WasteType = "Plastic"
	WastePaper   WasteType = "Paper"
	WasteGlass   WasteType = "Glass"
	WasteOrganic WasteType = "Organic"
	WasteEwaste  WasteType = "E-waste"
)

func ParseWasteType(s string) (WasteType, error) {
	switch WasteType(s) {
	case WastePlastic, WastePaper, WasteGlass, WasteOrganic, WasteEwaste:
		return WasteType(s), nil
	}
	return "", fmt.Errorf("invalid waste type %q", s)
}

type WasteUnit string

const (
	UnitKg    WasteUnit = "kg"
	UnitCount WasteUnit = "count"
)

func ParseWasteUnit(s string) (WasteUnit, error) {
	switch WasteUnit(s) {
	case UnitKg, UnitCount:
		return WasteUnit(s), nil
	case "":
		return UnitKg, nil
	}
	return "", fmt.Errorf("invalid unit %q", s)
}

type WasteLog struct {
	ID               uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID           uint      `json:"userId" gorm:"index;not null"`
	WasteType        WasteType `json:"wasteType" gorm:"not null"`
	Quantity         float64   `json:"quantity" gorm:"not null"`
	Unit             WasteUnit `json:"unit" gorm:"not null;default:kg"`
	ImageURL         string    `json:"imageUrl"`
	IsBiodegradable  bool      `json:"isBiodegradable" gorm:"not null;default:false"`
	IsRecyclable     bool      `json:"isRecyclable" gorm:"not null;default:false"`
	CarbonEquivalent float64   `json:"carbonEquivalent" gorm:"not null;default:0"`
	Notes            string    `json:"notes"`
	Date             time.Time `json:"date"`
}

type RecyclingCenter struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name            string    `json:"name" gorm:"not null"`
	City            string    `json:"city" gorm:"not null"`
	Address         string    `json:"address" gorm:"not null"`
	Longitude       float64   `json:"longitude" gorm:"not null"`
	Latitude        float64   `json:"latitude" gorm:"not null"`
	AcceptMaterials []string  `json:"acceptMaterials" gorm:"serializer:json"`
	ContactNumber   string    `json:"contactNumber"`
	OperatingHours  string    `json:"operatingHours"`
	IsActive        bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

type RecyclingSubmission struct {
	ID              uint             `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID          uint             `json:"userId" gorm:"index;not null"`
	CenterID        uint             `json:"centerId" gorm:"index;not null"`
	MaterialType    string           `json:"materialType" gorm:"not null"`
	EstimatedWeight float64          `json:"estimatedWeight" gorm:"not null"`
	Unit            WasteUnit        `json:"unit" gorm:"not null;default:kg"`
	Status          SubmissionStatus `json:"status" gorm:"not null;default:pending"`
	ReviewedBy      *uint            `json:"reviewedBy"`
	ReviewNotes     string           `json:"reviewNotes"`
	ReviewedAt      *time.Time       `json:"reviewedAt"`
	SubmittedAt     time.Time        `json:"submittedAt"`
}
