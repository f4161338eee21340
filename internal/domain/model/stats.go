package model

// Stats — сводные счётчики для главной страницы админки.
type Stats struct {
	TotalJobs         int64 `json:"totalJobs"`
	ActiveJobs        int64 `json:"activeJobs"`
	TotalApplications int64 `json:"totalApplications"`
	TotalEnquiries    int64 `json:"totalEnquiries"`
}
