package business

import (
	"strings"
	"time"
)

// Staff roles within a business. A staff member has admin-panel access,
// unlike a paying gym customer.
const (
	RoleOwner        = "owner"
	RoleAdmin        = "admin"
	RoleTrainer      = "trainer"
	RoleReceptionist = "receptionist"
)

var ValidStaffRoles = []string{RoleOwner, RoleAdmin, RoleTrainer, RoleReceptionist}

func IsValidStaffRole(role string) bool {
	for _, r := range ValidStaffRoles {
		if r == role {
			return true
		}
	}
	return false
}

// StaffMember is a role-bearing employee record embedded on the business doc.
type StaffMember struct {
	UID     string    `firestore:"uid" json:"uid"`
	Name    string    `firestore:"name,omitempty" json:"name,omitempty"`
	Email   string    `firestore:"email,omitempty" json:"email,omitempty"`
	Role    string    `firestore:"role" json:"role"`
	AddedBy string    `firestore:"addedBy,omitempty" json:"addedBy,omitempty"`
	AddedAt time.Time `firestore:"addedAt" json:"addedAt"`
}

// Business is a tenant: one gym business with its owners and staff.
type Business struct {
	ID            string        `firestore:"id" json:"id"`
	CompanyName   string        `firestore:"companyName" json:"companyName"`
	NameLower     string        `firestore:"nameLower" json:"-"`
	Slug          string        `firestore:"slug,omitempty" json:"slug,omitempty"`
	CompanyNumber string        `firestore:"companyNumber,omitempty" json:"companyNumber,omitempty"`
	Email         string        `firestore:"email,omitempty" json:"email,omitempty"`
	Phone         string        `firestore:"phone,omitempty" json:"phone,omitempty"`
	Website       string        `firestore:"website,omitempty" json:"website,omitempty"`
	Address       string        `firestore:"address,omitempty" json:"address,omitempty"`
	OwnerUIDs     []string      `firestore:"ownerUids" json:"ownerUids"`
	StaffMembers  []StaffMember `firestore:"staffMembers,omitempty" json:"staffMembers,omitempty"`

	// subscription fields maintained by the billing webhook
	Plan               string    `firestore:"plan,omitempty" json:"plan,omitempty"`
	SubscriptionID     string    `firestore:"subscriptionId,omitempty" json:"-"`
	SubscriptionStatus string    `firestore:"subscriptionStatus,omitempty" json:"subscriptionStatus,omitempty"`
	StripeCustomerID   string    `firestore:"stripeCustomerId,omitempty" json:"-"`
	PlanPeriodEnd      time.Time `firestore:"planPeriodEnd,omitempty" json:"planPeriodEnd,omitempty"`

	CreatedBy string    `firestore:"createdBy" json:"createdBy"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// IsOwner reports whether uid owns the business.
func (b *Business) IsOwner(uid string) bool {
	for _, o := range b.OwnerUIDs {
		if o == uid {
			return true
		}
	}
	return b.CreatedBy == uid
}

// IsStaff reports whether uid is an owner or holds any staff role.
func (b *Business) IsStaff(uid string) bool {
	if b.IsOwner(uid) {
		return true
	}
	for _, s := range b.StaffMembers {
		if s.UID == uid {
			return true
		}
	}
	return false
}

// CreateBusinessInput represents input for creating a business
type CreateBusinessInput struct {
	CompanyName   string `json:"companyName"`
	CompanyNumber string `json:"companyNumber,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Website       string `json:"website,omitempty"`
	Address       string `json:"address,omitempty"`
}

func (in *CreateBusinessInput) Trim() {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.CompanyNumber = strings.TrimSpace(in.CompanyNumber)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Website = strings.TrimSpace(in.Website)
	in.Address = strings.TrimSpace(in.Address)
}

// UpdateBusinessInput represents input for updating a business
type UpdateBusinessInput struct {
	CompanyName   *string `json:"companyName,omitempty"`
	CompanyNumber *string `json:"companyNumber,omitempty"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Website       *string `json:"website,omitempty"`
	Address       *string `json:"address,omitempty"`
}

func (in *UpdateBusinessInput) Trim() {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(in.CompanyName)
	trim(in.CompanyNumber)
	trim(in.Email)
	trim(in.Phone)
	trim(in.Website)
	trim(in.Address)
}

// AddStaffInput represents input for adding a staff member
type AddStaffInput struct {
	UID   string `json:"uid"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

func (in *AddStaffInput) Trim() {
	in.UID = strings.TrimSpace(in.UID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
}
