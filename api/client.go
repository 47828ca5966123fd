package api

// Client groups the resource clients for every endpoint the console uses.
type Client struct {
	Auth          *AuthClient
	Hostels       *HostelsClient
	Applicants    *ApplicantsClient
	AdminUsers    *Resource[AdminUser, CreateAdminUserRequest, UpdateAdminUserRequest]
	Zones         *Resource[Zone, CreateZoneRequest, UpdateZoneRequest]
	Members       *Resource[Member, MemberRequest, MemberRequest]
	Announcements *Resource[Announcement, AnnouncementRequest, AnnouncementRequest]
	Programs      *ProgramsClient
	Registrations *RegistrationsClient
	Dashboard     *DashboardClient
}

// New creates the resource clients over doer, normally a *transport.Client.
func New(doer Doer) *Client {
	return &Client{
		Auth:       &AuthClient{doer: doer},
		Hostels:    newHostelsClient(doer),
		Applicants: &ApplicantsClient{doer: doer},
		AdminUsers: NewResource[AdminUser, CreateAdminUserRequest, UpdateAdminUserRequest]("admin_users", doer, Paths{
			Read:  "/api/v3/admin/users/users/",
			Write: "/api/v2/crm/admin/users/users/",
		}),
		Zones: NewResource[Zone, CreateZoneRequest, UpdateZoneRequest]("zones", doer, Paths{
			Read:  "/api/v3/admin/zones/",
			Write: "/api/v2/crm/admin/zones/",
		}),
		Members: NewResource[Member, MemberRequest, MemberRequest]("members", doer, Paths{
			Read:  "/api/v3/admin/members/",
			Write: "/api/v3/admin/members/",
		}),
		Announcements: NewResource[Announcement, AnnouncementRequest, AnnouncementRequest]("announcements", doer, Paths{
			Read:  "/api/v2/crm/admin/announcements/",
			Write: "/api/v2/crm/admin/announcements/",
		}),
		Programs:      newProgramsClient(doer),
		Registrations: &RegistrationsClient{doer: doer},
		Dashboard:     &DashboardClient{doer: doer},
	}
}
