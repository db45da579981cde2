package model

import "time"

type WorkOrderStatus string

const (
	StatusPending            WorkOrderStatus = "pending"
	StatusInProgress         WorkOrderStatus = "in_progress"
	StatusCompleted          WorkOrderStatus = "completed"
	StatusCancelled          WorkOrderStatus = "cancelled"
	StatusReadyForCollection WorkOrderStatus = "ready_for_collection"
	StatusCollected          WorkOrderStatus = "collected"
)

// Valid reports whether s is one of the known statuses. Transitions are
// deliberately unrestricted: any status may be set to any other.
func (s WorkOrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled,
		StatusReadyForCollection, StatusCollected:
		return true
	}
	return false
}

type Customer struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	FirstName   string `gorm:"type:varchar(30);not null" json:"first_name"`
	LastName    string `gorm:"type:varchar(30);not null" json:"last_name"`
	Email       string `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	PhoneNumber string `gorm:"type:varchar(15)" json:"phone_number,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

type Technician struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	FirstName   string `gorm:"type:varchar(30);not null" json:"first_name"`
	LastName    string `gorm:"type:varchar(30);not null" json:"last_name"`
	Email       string `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	PhoneNumber string `gorm:"type:varchar(15)" json:"phone_number,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkOrder is one repair ticket. WorkOrderNumber is assigned exactly once at
// first persistence and never changes afterwards. IsActive is a soft-delete
// flag, orthogonal to Status.
type WorkOrder struct {
	ID              uint64 `gorm:"primaryKey" json:"id"`
	WorkOrderNumber string `gorm:"type:varchar(20);uniqueIndex;not null" json:"work_order_number"`

	CustomerID   uint64      `gorm:"index;not null" json:"customer_id"`
	Customer     *Customer   `gorm:"constraint:OnDelete:CASCADE" json:"customer,omitempty"`
	TechnicianID *uint64     `gorm:"index" json:"technician_id,omitempty"`
	Technician   *Technician `gorm:"constraint:OnDelete:SET NULL" json:"technician,omitempty"`

	ProductType  string `gorm:"type:varchar(100)" json:"product_type"`
	ProductBrand string `gorm:"type:varchar(100)" json:"product_brand"`
	ProductModel string `gorm:"type:varchar(100)" json:"product_model"`
	SerialNumber string `gorm:"type:varchar(100);index" json:"serial_number,omitempty"`

	IssueDescription      string `gorm:"type:text" json:"issue_description"`
	RepairDetails         string `gorm:"type:text" json:"repair_details,omitempty"`
	ReasonForNotRepairing string `gorm:"type:text" json:"reason_for_not_repairing,omitempty"`

	EstimatedCost           *float64   `gorm:"type:numeric(10,2)" json:"estimated_cost,omitempty"`
	EstimatedCompletionDate *time.Time `json:"estimated_completion_date,omitempty"`
	TotalCost               *float64   `gorm:"type:numeric(10,2)" json:"total_cost,omitempty"`

	// IsRepaired is tri-state: nil means not yet determined.
	IsRepaired        *bool      `json:"is_repaired,omitempty"`
	CustomerCollected bool       `gorm:"not null;default:false" json:"customer_collected"`
	DateCollected     *time.Time `json:"date_collected,omitempty"`

	Status   WorkOrderStatus `gorm:"type:varchar(20);index;not null;default:pending" json:"status"`
	IsActive bool            `gorm:"index;not null;default:true" json:"is_active"`

	Images []ProductImage `gorm:"foreignKey:WorkOrderID" json:"images,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProductImage struct {
	ID          uint64     `gorm:"primaryKey" json:"id"`
	WorkOrderID uint64     `gorm:"index;not null" json:"work_order_id"`
	WorkOrder   *WorkOrder `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Image       string     `gorm:"type:varchar(255);not null" json:"image"`
	UploadedAt  time.Time  `gorm:"autoCreateTime;<-:create" json:"uploaded_at"`
}

type RemoteRequestStatus string

const (
	RemoteRequestNew       RemoteRequestStatus = "new"
	RemoteRequestConverted RemoteRequestStatus = "converted"
)

// RemoteRequest is an unauthenticated service request from the public intake
// form. It is promoted into a Customer + WorkOrder exactly once.
type RemoteRequest struct {
	ID                uint64              `gorm:"primaryKey" json:"id"`
	CustomerName      string              `gorm:"type:varchar(100);not null" json:"customer_name"`
	CustomerEmail     string              `gorm:"type:varchar(254);index" json:"customer_email,omitempty"`
	CustomerPhone     string              `gorm:"type:varchar(15)" json:"customer_phone,omitempty"`
	IssueDescription  string              `gorm:"type:text;not null" json:"issue_description"`
	PreferredTool     string              `gorm:"type:varchar(100)" json:"preferred_tool,omitempty"`
	PreferredDatetime string              `gorm:"type:varchar(50)" json:"preferred_datetime,omitempty"`
	Status            RemoteRequestStatus `gorm:"type:varchar(20);index;not null;default:new" json:"status"`
	ReviewedBy        string              `gorm:"type:varchar(100)" json:"reviewed_by,omitempty"`
	WorkOrderID       *uint64             `gorm:"index" json:"work_order_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
