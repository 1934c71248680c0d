package engine

import "time"

// Source identifies a job discovery portal.
type Source string

const (
	SourceLinkedIn     Source = "linkedin"
	SourceIndeed       Source = "indeed"
	SourceZipRecruiter Source = "ziprecruiter"
)

// Company is the employer attached to a listing.
type Company struct {
	Name    string `json:"name"`
	Logo    string `json:"logo,omitempty"`
	Website string `json:"website,omitempty"`
}

// Salary is an optional compensation range.
type Salary struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Currency string `json:"currency"`
}

// JobListing is a normalized job posting. Immutable once produced by a search
// adapter; downstream stages read it, never mutate it.
type JobListing struct {
	ID             string     `json:"id"` // unique per source only
	Title          string     `json:"title"`
	Company        Company    `json:"company"`
	Location       string     `json:"location"`
	IsRemote       bool       `json:"is_remote"`
	Description    string     `json:"description,omitempty"` // markdown
	ApplicationURL string     `json:"application_url"`
	PublishedAt    *time.Time `json:"published_at,omitempty"` // nil = unknown
	JobType        string     `json:"job_type,omitempty"`
	Salary         *Salary    `json:"salary,omitempty"`
	Skills         []string   `json:"skills,omitempty"`
	Source         Source     `json:"source"`
}

// SearchQuery is the caller-facing discovery query.
type SearchQuery struct {
	Keywords    string `json:"keywords"`
	Location    string `json:"location,omitempty"`
	RemoteOnly  bool   `json:"remote_only,omitempty"`
	MaxAgeHours int    `json:"max_age_hours,omitempty"` // 0 = no recency bound
}

// WorkEntry is one position in the applicant's work history.
type WorkEntry struct {
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end,omitempty"` // zero when Current
	Current     bool      `json:"current,omitempty"`
	Description string    `json:"description,omitempty"`
}

// EducationEntry is one education record.
type EducationEntry struct {
	School         string `json:"school"`
	Degree         string `json:"degree"`
	Field          string `json:"field,omitempty"`
	GraduationDate string `json:"graduation_date,omitempty"`
}

// ApplicantProfile drives form-filling. Constructed once per application
// attempt from stored user data plus decrypted portal credentials, read-only
// during a submission flow.
type ApplicantProfile struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address,omitempty"`
	CityStateZip string `json:"city_state_zip,omitempty"`

	ResumePath          string `json:"resume_path,omitempty"`
	CoverLetterTemplate string `json:"cover_letter_template,omitempty"`

	LinkedInURL  string `json:"linkedin_url,omitempty"`
	GitHubURL    string `json:"github_url,omitempty"`
	PortfolioURL string `json:"portfolio_url,omitempty"`

	WorkHistory []WorkEntry      `json:"work_history,omitempty"`
	Education   []EducationEntry `json:"education,omitempty"`
	Skills      []string         `json:"skills,omitempty"`

	WillingToRelocate  bool   `json:"willing_to_relocate,omitempty"`
	WorkAuthorization  bool   `json:"work_authorization,omitempty"`
	SalaryExpectation  int    `json:"salary_expectation,omitempty"`
	AvailableStartDate string `json:"available_start_date,omitempty"`
	ReferralSource     string `json:"referral_source,omitempty"`

	// Credentials is the decrypted secret bag for the target portal.
	Credentials map[string]string `json:"-"`
}

// ApplicationResult records one submission attempt. Append-only: a retry
// produces a new result, never an update.
type ApplicationResult struct {
	JobID          string    `json:"job_id"`
	Success        bool      `json:"success"`
	Company        string    `json:"company"`
	Title          string    `json:"title"`
	ApplicationURL string    `json:"application_url"`
	Timestamp      time.Time `json:"timestamp"`
	Error          string    `json:"error,omitempty"`
}

// BatchStatus is the lifecycle state of a batch.
type BatchStatus string

const (
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchAborted    BatchStatus = "aborted"
)

// BatchState is per-batch progress visible to pollers. Results keep the same
// order as JobIDs.
type BatchState struct {
	BatchID   string              `json:"batch_id"`
	UserID    string              `json:"user_id"`
	JobIDs    []string            `json:"job_ids"`
	Status    BatchStatus         `json:"status"`
	Progress  int                 `json:"progress"` // 0–100
	Results   []ApplicationResult `json:"results"`
	StartTime time.Time           `json:"start_time"`
	EndTime   *time.Time          `json:"end_time,omitempty"`
}
