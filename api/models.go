package api

// Gender values used by hostels and applicants. Hostels may also use GenderAll.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderAll    = "all"
)

// Program audiences.
const (
	ProgramForCRM  = "CRM"
	ProgramForRCCG = "RCCG"
	ProgramForBoth = "BOTH"
)

// Hostel is a unit of accommodation with a live remaining capacity.
type Hostel struct {
	ID                ID     `json:"id"`
	Name              string `json:"name"`
	Location          string `json:"location"`
	Capacity          int    `json:"capacity"`
	RemainingCapacity int    `json:"remainingCapacity"`
	Gender            string `json:"gender"`
}

type HostelRequest struct {
	Name              string `json:"name" validate:"required"`
	Location          string `json:"location" validate:"required"`
	Capacity          int    `json:"capacity" validate:"gte=0"`
	RemainingCapacity int    `json:"remainingCapacity" validate:"gte=0,ltefield=Capacity"`
	Gender            string `json:"gender" validate:"required,oneof=male female all"`
}

type AssignHostelRequest struct {
	MemberID ID  `json:"memberId" validate:"required"`
	HostelID *ID `json:"hostelId,omitempty"`
}

type ManualAssignRequest struct {
	MemberIDs []ID `json:"memberIds" validate:"required,min=1,dive,required"`
	HostelID  ID   `json:"hostelId" validate:"required"`
}

type AssignAllResponse struct {
	Message         string `json:"message"`
	AssignedCount   int    `json:"assignedCount"`
	UnassignedCount int    `json:"unassignedCount"`
}

type Zone struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    int    `json:"isActive"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

type CreateZoneRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	IsActive    int    `json:"isActive" validate:"oneof=0 1"`
}

// UpdateZoneRequest sends only the fields that are set.
type UpdateZoneRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
	IsActive    *int    `json:"isActive,omitempty" validate:"omitempty,oneof=0 1"`
}

type Member struct {
	ID           ID     `json:"id"`
	FellowshipID ID     `json:"fellowshipId"`
	Name         string `json:"name"`
	Gender       string `json:"gender"`
	Email        string `json:"email"`
}

type MemberRequest struct {
	Name         string `json:"name" validate:"required"`
	Gender       string `json:"gender" validate:"required,oneof=male female"`
	Email        string `json:"email" validate:"required,email"`
	FellowshipID ID     `json:"fellowshipId" validate:"required"`
}

type Announcement struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt,omitempty"`
	CreatedBy string `json:"createdBy,omitempty"`
}

type AnnouncementRequest struct {
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type Program struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Location    string `json:"location,omitempty"`
	Price       string `json:"price,omitempty"`
	Image       string `json:"image,omitempty"`
	For         string `json:"for"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

type CreateProgramRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Location    string `json:"location,omitempty"`
	Price       string `json:"price,omitempty"`
	Image       string `json:"image,omitempty" validate:"omitempty,url"`
	For         string `json:"for" validate:"required,oneof=CRM RCCG BOTH"`
}

// UpdateProgramRequest sends only the fields that are set.
type UpdateProgramRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
	Duration    *string `json:"duration,omitempty"`
	Location    *string `json:"location,omitempty"`
	Price       *string `json:"price,omitempty"`
	Image       *string `json:"image,omitempty" validate:"omitempty,url"`
	For         *string `json:"for,omitempty" validate:"omitempty,oneof=CRM RCCG BOTH"`
}

type RegistrationProgram struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	For      string `json:"for"`
}

type RegistrationHotel struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Registration is a sign-up for a program.
type Registration struct {
	ID        ID                  `json:"id"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Phone     *string             `json:"phone"`
	Anonymous bool                `json:"anonymous"`
	CreatedAt string              `json:"createdAt"`
	Program   RegistrationProgram `json:"program"`
	Hotel     *RegistrationHotel  `json:"hotel"`
}

// Applicant is a user being considered for hostel assignment.
type Applicant struct {
	ID             ID      `json:"id"`
	Name           string  `json:"name"`
	Gender         string  `json:"gender"`
	Email          string  `json:"email"`
	Zone           string  `json:"zone"`
	Fellowship     string  `json:"fellowship"`
	State          string  `json:"state"`
	HostelAssigned bool    `json:"hostelAssigned"`
	HostelName     *string `json:"hostelName"`
}

type AdminUser struct {
	ID           ID     `json:"id"`
	MemberID     ID     `json:"memberId"`
	Name         string `json:"name"`
	Gender       string `json:"gender"`
	Email        string `json:"email"`
	ZoneID       ID     `json:"zoneId"`
	FellowshipID ID     `json:"fellowshipId"`
	IsAdmin      bool   `json:"isAdmin"`
}

type CreateAdminUserRequest struct {
	Name         string `json:"name" validate:"required"`
	Gender       string `json:"gender" validate:"required,oneof=male female"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	MemberID     ID     `json:"memberId" validate:"required"`
	ZoneID       ID     `json:"zoneId" validate:"required"`
	FellowshipID ID     `json:"fellowshipId" validate:"required"`
	IsAdmin      bool   `json:"isAdmin"`
}

// UpdateAdminUserRequest sends only the fields that are set.
type UpdateAdminUserRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Gender       *string `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Password     *string `json:"password,omitempty" validate:"omitempty,min=6"`
	MemberID     *ID     `json:"memberId,omitempty"`
	ZoneID       *ID     `json:"zoneId,omitempty"`
	FellowshipID *ID     `json:"fellowshipId,omitempty"`
	IsAdmin      *bool   `json:"isAdmin,omitempty"`
}

type DashboardSummary struct {
	TotalUsers    int     `json:"totalUsers"`
	AssignedUsers int     `json:"assignedUsers"`
	TotalHostels  int     `json:"totalHostels"`
	ZonesCount    int     `json:"zonesCount"`
	OccupancyRate float64 `json:"occupancyRate"`
}

type GenderDistributionEntry struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type DashboardRecentUser struct {
	ID             ID      `json:"id"`
	Name           string  `json:"name"`
	Gender         string  `json:"gender"`
	Email          string  `json:"email"`
	Zone           string  `json:"zone"`
	Fellowship     string  `json:"fellowship"`
	HostelAssigned bool    `json:"hostelAssigned"`
	HostelName     *string `json:"hostelName"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Gender   string `json:"gender" validate:"required,oneof=male female"`
}

type AuthUser struct {
	ID      ID     `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Gender  string `json:"gender,omitempty"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
	Role    string `json:"role,omitempty"`
}

// AuthResponse is returned by login and register. Either field may be missing.
type AuthResponse struct {
	User    *AuthUser `json:"user,omitempty"`
	Token   string    `json:"token,omitempty"`
	Message string    `json:"message,omitempty"`
}
