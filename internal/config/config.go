package config

import (
	"os"
	"strings"
)

type Config struct {
	ProjectID                    string
	Port                         string
	AllowedOrigins               []string
	FrontendBaseURL              string
	StorageBucket                string
	SignedURLServiceAccountEmail string

	SendgridAPIKey   string
	EmailFromName    string
	EmailFromAddress string

	CompaniesHouseAPIKey  string
	CompaniesHouseBaseURL string

	GenAIAPIKey  string
	GenAIBaseURL string
	GenAIModel   string
}

func Load() Config {
	// FIREBASE_PROJECT_ID or GOOGLE_CLOUD_PROJECT
	projectID := getenv("FIREBASE_PROJECT_ID", "")
	if projectID == "" {
		projectID = getenv("GOOGLE_CLOUD_PROJECT", "")
	}

	port := getenv("PORT", "8080")
	origins := getenv("ALLOWED_ORIGINS", "http://localhost:3000")
	frontend := getenv("FRONTEND_BASE_URL", "http://localhost:3000")
	storageBucket := getenv("FIREBASE_STORAGE_BUCKET", "")
	if storageBucket == "" && projectID != "" {
		storageBucket = projectID + ".appspot.com"
	}

	allowed := []string{}
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			allowed = append(allowed, o)
		}
	}

	return Config{
		ProjectID:                    projectID,
		Port:                         port,
		AllowedOrigins:               allowed,
		FrontendBaseURL:              strings.TrimRight(frontend, "/"),
		StorageBucket:                storageBucket,
		SignedURLServiceAccountEmail: getenv("SIGNED_URL_SERVICE_ACCOUNT_EMAIL", ""),

		SendgridAPIKey:   getenv("SENDGRID_API_KEY", ""),
		EmailFromName:    getenv("EMAIL_FROM_NAME", "GymDesk"),
		EmailFromAddress: getenv("EMAIL_FROM_ADDRESS", "no-reply@gymdesk.app"),

		CompaniesHouseAPIKey:  getenv("COMPANIES_HOUSE_API_KEY", ""),
		CompaniesHouseBaseURL: getenv("COMPANIES_HOUSE_BASE_URL", "https://api.company-information.service.gov.uk"),

		GenAIAPIKey:  getenv("GENAI_API_KEY", ""),
		GenAIBaseURL: getenv("GENAI_BASE_URL", "https://api.openai.com/v1"),
		GenAIModel:   getenv("GENAI_MODEL", "gpt-4o-mini"),
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
