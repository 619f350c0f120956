package stats

// BusinessStats represents dashboard statistics for a business
type BusinessStats struct {
	Members  MemberStats  `json:"members"`
	Classes  ClassStats   `json:"classes"`
	Schedule OccupancyStats `json:"schedule"`
	Bookings BookingStats `json:"bookings"`
}

type MemberStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

type ClassStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// OccupancyStats covers upcoming scheduled classes
type OccupancyStats struct {
	Upcoming      int    `json:"upcoming"`
	TotalSpots    int    `json:"totalSpots"`
	BookedSpots   int    `json:"bookedSpots"`
	OccupancyRate string `json:"occupancyRate"`
}

type BookingStats struct {
	ThisMonth MonthlyBookings `json:"thisMonth"`
}

type MonthlyBookings struct {
	Total     int    `json:"total"`
	Active    int    `json:"active"`
	Cancelled int    `json:"cancelled"`
	CancelRate string `json:"cancelRate"`
}

// CRMStats represents pipeline and outreach statistics for a user
type CRMStats struct {
	Clients ClientStats `json:"clients"`
	Emails  EmailStats  `json:"emails"`
}

type ClientStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

type EmailStats struct {
	ThisMonth MonthlyEmails `json:"thisMonth"`
}

type MonthlyEmails struct {
	Sent     int    `json:"sent"`
	Failed   int    `json:"failed"`
	Opened   int    `json:"opened"`
	OpenRate string `json:"openRate"`
}
