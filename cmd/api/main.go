package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gymdesk/backend/internal/companieshouse"
	"gymdesk/backend/internal/config"
	"gymdesk/backend/internal/domain/billing"
	"gymdesk/backend/internal/domain/booking"
	"gymdesk/backend/internal/domain/business"
	"gymdesk/backend/internal/domain/catalog"
	"gymdesk/backend/internal/domain/clients"
	"gymdesk/backend/internal/domain/emails"
	"gymdesk/backend/internal/domain/followup"
	"gymdesk/backend/internal/domain/leadgen"
	"gymdesk/backend/internal/domain/members"
	"gymdesk/backend/internal/domain/profile"
	"gymdesk/backend/internal/domain/proposals"
	"gymdesk/backend/internal/domain/schedule"
	"gymdesk/backend/internal/domain/stats"
	"gymdesk/backend/internal/domain/tasks"
	"gymdesk/backend/internal/firebase"
	"gymdesk/backend/internal/genai"
	"gymdesk/backend/internal/handlers"
	apihttp "gymdesk/backend/internal/http"
	"gymdesk/backend/internal/mailer"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.Load()

	fb, err := firebase.NewClients(ctx, cfg)
	if err != nil {
		log.Fatalf("firebase init failed: %v", err)
	}
	defer fb.Firestore.Close()

	// Mailer: sendgrid when configured, console otherwise.
	var mail mailer.Service
	if cfg.SendgridAPIKey != "" {
		mail = mailer.NewSendgridService(cfg.SendgridAPIKey, cfg.EmailFromName, cfg.EmailFromAddress)
		log.Println("sendgrid mailer initialized")
	} else {
		mail = mailer.NewConsoleService()
		log.Println("SENDGRID_API_KEY not set, emails go to the console")
	}

	gen := genai.NewClient(cfg.GenAIBaseURL, cfg.GenAIAPIKey, cfg.GenAIModel)
	if !gen.Enabled() {
		log.Println("GENAI_API_KEY not set, AI features disabled")
	}

	companies := companieshouse.NewClient(cfg.CompaniesHouseBaseURL, cfg.CompaniesHouseAPIKey)
	if !companies.Enabled() {
		log.Println("COMPANIES_HOUSE_API_KEY not set, registry lookups disabled")
	}

	// Repositories
	bizRepo := business.NewRepo(fb.Firestore)
	membersRepo := members.NewRepo(fb.Firestore)
	catalogRepo := catalog.NewRepo(fb.Firestore)
	scheduleRepo := schedule.NewRepo(fb.Firestore)
	bookingRepo := booking.NewRepo(fb.Firestore)
	clientsRepo := clients.NewRepo(fb.Firestore)
	emailsRepo := emails.NewRepo(fb.Firestore)
	proposalsRepo := proposals.NewRepo(fb.Firestore)
	tasksRepo := tasks.NewRepo(fb.Firestore)

	// Services
	businessSvc := business.NewService(bizRepo)
	membersSvc := members.NewService(membersRepo, bizRepo)
	catalogSvc := catalog.NewService(catalogRepo, bizRepo)
	bookingSvc := booking.NewService(bookingRepo, bizRepo)
	scheduleSvc := schedule.NewService(scheduleRepo, catalogRepo, bookingRepo, bizRepo, mail)
	clientsSvc := clients.NewService(clientsRepo)
	tasksSvc := tasks.NewService(tasksRepo, clientsSvc)
	followupSvc := followup.NewService(fb.Firestore, clientsRepo)
	emailsSvc := emails.NewService(emailsRepo, mail, clientsSvc)
	proposalsSvc := proposals.NewService(proposalsRepo, gen, clientsSvc, emailsSvc)
	profileSvc := profile.NewService(fb.Firestore, fb.Auth, mail)
	statsSvc := stats.NewService(fb.Firestore, bizRepo)

	var companyLookup leadgen.CompanyLookup
	if companies.Enabled() {
		companyLookup = companies
	}
	leadgenSvc := leadgen.NewService(gen, clientsSvc, companyLookup)

	// Billing (optional - only if configured)
	var billingSvc *billing.Service
	billingCfg := billing.LoadConfig()
	if billingCfg.Configured() {
		billingSvc = billing.NewService(fb.Firestore, billingCfg)
		log.Println("billing service initialized")
	} else {
		log.Println("STRIPE_SECRET_KEY not set, billing disabled")
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:             cfg,
		AuthClient:      fb.Auth,
		FirestoreClient: fb.Firestore,

		BusinessSvc:  businessSvc,
		MembersSvc:   membersSvc,
		CatalogSvc:   catalogSvc,
		ScheduleSvc:  scheduleSvc,
		BookingSvc:   bookingSvc,
		ClientsSvc:   clientsSvc,
		TasksSvc:     tasksSvc,
		FollowupSvc:  followupSvc,
		EmailsSvc:    emailsSvc,
		ProposalsSvc: proposalsSvc,
		LeadgenSvc:   leadgenSvc,
		ProfileSvc:   profileSvc,
		StatsSvc:     statsSvc,
		BillingSvc:   billingSvc,

		Companies: companies,
		Uploads:   handlers.NewUploads(cfg, fb),
		Claims:    handlers.NewClaims(fb),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Printf("API listening on :%s (project=%s)", cfg.Port, cfg.ProjectID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("shutting down...")
	_ = srv.Shutdown(ctxShutdown)
}
