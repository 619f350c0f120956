package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
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
	"gymdesk/backend/internal/handlers"
	"gymdesk/backend/internal/middleware"

	"firebase.google.com/go/v4/auth"
	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	Cfg             config.Config
	AuthClient      *auth.Client
	FirestoreClient *firestore.Client

	BusinessSvc  *business.Service
	MembersSvc   *members.Service
	CatalogSvc   *catalog.Service
	ScheduleSvc  *schedule.Service
	BookingSvc   *booking.Service
	ClientsSvc   *clients.Service
	TasksSvc     *tasks.Service
	FollowupSvc  *followup.Service
	EmailsSvc    *emails.Service
	ProposalsSvc *proposals.Service
	LeadgenSvc   *leadgen.Service
	ProfileSvc   *profile.Service
	StatsSvc     *stats.Service
	BillingSvc   *billing.Service

	Companies *companieshouse.Client
	Uploads   *handlers.Uploads
	Claims    *handlers.Claims
}

// openPixel is a 1x1 transparent GIF served by the email open tracker.
var openPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(d.Cfg.AllowedOrigins))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	})

	// ===== Billing webhook (no auth required) =====
	if d.BillingSvc != nil {
		r.Post("/v1/billing/webhook", d.BillingSvc.HandleWebhook)
	}

	// ===== Email open tracking pixel (no auth required) =====
	if d.EmailsSvc != nil {
		r.Get("/v1/emails/open/{token}", func(w http.ResponseWriter, r *http.Request) {
			token := chi.URLParam(r, "token")
			if token != "" {
				d.EmailsSvc.TrackOpen(r.Context(), token)
			}
			w.Header().Set("Content-Type", "image/gif")
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
			w.WriteHeader(200)
			_, _ = w.Write(openPixel)
		})
	}

	// ===== Password reset (no auth required) =====
	if d.ProfileSvc != nil {
		r.Post("/v1/auth/password-reset", func(w http.ResponseWriter, r *http.Request) {
			var in struct {
				Email string `json:"email"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			if err := d.ProfileSvc.SendPasswordReset(r.Context(), in.Email); err != nil {
				status, msg := mapProfileError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"ok": true})
		})
	}

	// Protected routes
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.WithAuth(d.AuthClient))

		pr.Get("/v1/me", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			WriteJSON(w, 200, map[string]any{
				"uid":    au.UID,
				"email":  au.Email,
				"claims": au.Claims,
			})
		})

		// ===== Claims sync =====
		if d.Claims != nil {
			pr.Post("/v1/auth/sync-claims", d.Claims.SyncUserClaims)
			pr.Post("/v1/admin/migrate-claims", d.Claims.MigrateAllUserClaims)
		}

		// ===== Business routes =====
		pr.Post("/v1/businesses", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in business.CreateBusinessInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			in.Trim()

			out, err := d.BusinessSvc.Create(r.Context(), au.UID, in)
			if err != nil {
				status, msg := mapBusinessError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, out)
		})

		pr.Get("/v1/businesses", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			out, err := d.BusinessSvc.ListMine(r.Context(), au.UID)
			if err != nil {
				status, msg := mapBusinessError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"businesses": out})
		})

		pr.Get("/v1/businesses/search", func(w http.ResponseWriter, r *http.Request) {
			q := strings.TrimSpace(r.URL.Query().Get("q"))
			limit := int64(20)
			if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
				if n, err := strconv.ParseInt(limitStr, 10, 64); err == nil {
					limit = n
				}
			}
			out, err := d.BusinessSvc.Search(r.Context(), q, limit)
			if err != nil {
				status, msg := mapBusinessError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"businesses": out})
		})

		pr.Get("/v1/businesses/{businessId}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			businessId := chi.URLParam(r, "businessId")
			if businessId == "" {
				Fail(w, 400, "missing businessId")
				return
			}
			out, err := d.BusinessSvc.Get(r.Context(), au.UID, businessId)
			if err != nil {
				status, msg := mapBusinessError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		pr.Put("/v1/businesses/{businessId}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			businessId := chi.URLParam(r, "businessId")
			if businessId == "" {
				Fail(w, 400, "missing businessId")
				return
			}

			var in business.UpdateBusinessInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			in.Trim()

			out, err := d.BusinessSvc.Update(r.Context(), au.UID, businessId, in)
			if err != nil {
				status, msg := mapBusinessError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		// ===== Staff management =====
		pr.Post("/v1/businesses/{businessId}/staff", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			businessId := chi.URLParam(r, "businessId")
			if businessId == "" {
				Fail(w, 400, "missing businessId")
				return
			}

			if d.BillingSvc != nil {
				if err := d.BillingSvc.CheckPlanLimit(r.Context(), businessId, "staff"); err != nil {
					if billing.IsErrLimitReached(err) {
						Fail(w, 402, err.Error())
						return
					}
				}
			}

			var in business.AddStaffInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			in.Trim()

			if err := d.BusinessSvc.AddStaff(r.Context(), au.UID, businessId, in); err != nil {
				status, msg := mapBusinessError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, map[string]any{"ok": true})
		})

		pr.Put("/v1/businesses/{businessId}/staff/{staffUid}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			businessId := chi.URLParam(r, "businessId")
			staffUid := chi.URLParam(r, "staffUid")
			if businessId == "" || staffUid == "" {
				Fail(w, 400, "missing businessId or staffUid")
				return
			}

			var in struct {
				Role string `json:"role"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			if err := d.BusinessSvc.UpdateStaffRole(r.Context(), au.UID, businessId, staffUid, strings.TrimSpace(in.Role)); err != nil {
				status, msg := mapBusinessError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"ok": true})
		})

		pr.Delete("/v1/businesses/{businessId}/staff/{staffUid}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			businessId := chi.URLParam(r, "businessId")
			staffUid := chi.URLParam(r, "staffUid")
			if businessId == "" || staffUid == "" {
				Fail(w, 400, "missing businessId or staffUid")
				return
			}

			if err := d.BusinessSvc.RemoveStaff(r.Context(), au.UID, businessId, staffUid); err != nil {
				status, msg := mapBusinessError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"ok": true, "removed": staffUid})
		})

		// ===== Invites =====
		if d.ProfileSvc != nil {
			pr.Post("/v1/businesses/{businessId}/invites", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				if businessId == "" {
					Fail(w, 400, "missing businessId")
					return
				}

				// Membership check doubles as the business name lookup.
				biz, err := d.BusinessSvc.Get(r.Context(), au.UID, businessId)
				if err != nil {
					status, msg := mapBusinessError(err)
					Fail(w, status, msg)
					return
				}

				var in struct {
					Email string `json:"email"`
				}
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}

				uid, err := d.ProfileSvc.SendInvite(r.Context(), in.Email, biz.CompanyName)
				if err != nil {
					status, msg := mapProfileError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 201, map[string]any{"ok": true, "uid": uid})
			})
		}

		// ===== Member routes =====
		if d.MembersSvc != nil {
			pr.Post("/v1/businesses/{businessId}/members", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				if businessId == "" {
					Fail(w, 400, "missing businessId")
					return
				}

				if d.BillingSvc != nil {
					if err := d.BillingSvc.CheckPlanLimit(r.Context(), businessId, "member"); err != nil {
						if billing.IsErrLimitReached(err) {
							Fail(w, 402, err.Error())
							return
						}
					}
				}

				var in members.AddMemberInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.MembersSvc.Add(r.Context(), au.UID, businessId, in)
				if err != nil {
					status, msg := mapMembersError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 201, out)
			})

			pr.Get("/v1/businesses/{businessId}/members", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				if businessId == "" {
					Fail(w, 400, "missing businessId")
					return
				}

				status := r.URL.Query().Get("status")
				limit := 0
				if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
					if n, err := strconv.Atoi(limitStr); err == nil {
						limit = n
					}
				}

				out, err := d.MembersSvc.List(r.Context(), au.UID, businessId, status, limit)
				if err != nil {
					st, msg := mapMembersError(err)
					Fail(w, st, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"members": out})
			})

			pr.Get("/v1/businesses/{businessId}/members/{memberId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				memberId := chi.URLParam(r, "memberId")
				if businessId == "" || memberId == "" {
					Fail(w, 400, "missing businessId or memberId")
					return
				}

				out, err := d.MembersSvc.Get(r.Context(), au.UID, businessId, memberId)
				if err != nil {
					status, msg := mapMembersError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Put("/v1/businesses/{businessId}/members/{memberId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				memberId := chi.URLParam(r, "memberId")
				if businessId == "" || memberId == "" {
					Fail(w, 400, "missing businessId or memberId")
					return
				}

				var in members.UpdateMemberInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.MembersSvc.Update(r.Context(), au.UID, businessId, memberId, in)
				if err != nil {
					status, msg := mapMembersError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Post("/v1/businesses/{businessId}/members/{memberId}/status", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				memberId := chi.URLParam(r, "memberId")
				if businessId == "" || memberId == "" {
					Fail(w, 400, "missing businessId or memberId")
					return
				}

				var in members.ChangeStatusInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.MembersSvc.ChangeStatus(r.Context(), au.UID, businessId, memberId, in)
				if err != nil {
					status, msg := mapMembersError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Get("/v1/businesses/{businessId}/members/{memberId}/status-history", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				memberId := chi.URLParam(r, "memberId")
				if businessId == "" || memberId == "" {
					Fail(w, 400, "missing businessId or memberId")
					return
				}

				out, err := d.MembersSvc.StatusHistory(r.Context(), au.UID, businessId, memberId)
				if err != nil {
					status, msg := mapMembersError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"history": out})
			})
		}

		// ===== Class catalog routes =====
		if d.CatalogSvc != nil {
			pr.Post("/v1/businesses/{businessId}/classes", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				if businessId == "" {
					Fail(w, 400, "missing businessId")
					return
				}

				if d.BillingSvc != nil {
					if err := d.BillingSvc.CheckPlanLimit(r.Context(), businessId, "class"); err != nil {
						if billing.IsErrLimitReached(err) {
							Fail(w, 402, err.Error())
							return
						}
					}
				}

				var in catalog.CreateClassInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.CatalogSvc.CreateClass(r.Context(), au.UID, businessId, in)
				if err != nil {
					status, msg := mapCatalogError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 201, out)
			})

			pr.Get("/v1/businesses/{businessId}/classes", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				if businessId == "" {
					Fail(w, 400, "missing businessId")
					return
				}

				category := r.URL.Query().Get("category")
				out, err := d.CatalogSvc.ListClasses(r.Context(), au.UID, businessId, category)
				if err != nil {
					status, msg := mapCatalogError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"classes": out})
			})

			pr.Get("/v1/businesses/{businessId}/classes/{classId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				classId := chi.URLParam(r, "classId")
				if businessId == "" || classId == "" {
					Fail(w, 400, "missing businessId or classId")
					return
				}

				out, err := d.CatalogSvc.GetClass(r.Context(), au.UID, businessId, classId)
				if err != nil {
					status, msg := mapCatalogError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Put("/v1/businesses/{businessId}/classes/{classId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				classId := chi.URLParam(r, "classId")
				if businessId == "" || classId == "" {
					Fail(w, 400, "missing businessId or classId")
					return
				}

				var in catalog.UpdateClassInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.CatalogSvc.UpdateClass(r.Context(), au.UID, businessId, classId, in)
				if err != nil {
					status, msg := mapCatalogError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Delete("/v1/businesses/{businessId}/classes/{classId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				classId := chi.URLParam(r, "classId")
				if businessId == "" || classId == "" {
					Fail(w, 400, "missing businessId or classId")
					return
				}

				if err := d.CatalogSvc.DeleteClass(r.Context(), au.UID, businessId, classId); err != nil {
					status, msg := mapCatalogError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"ok": true, "deleted": classId})
			})

			pr.Post("/v1/businesses/{businessId}/categories", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				if businessId == "" {
					Fail(w, 400, "missing businessId")
					return
				}

				var in catalog.CreateCategoryInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.CatalogSvc.CreateCategory(r.Context(), au.UID, businessId, in)
				if err != nil {
					status, msg := mapCatalogError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 201, out)
			})

			pr.Get("/v1/businesses/{businessId}/categories", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				if businessId == "" {
					Fail(w, 400, "missing businessId")
					return
				}

				out, err := d.CatalogSvc.ListCategories(r.Context(), au.UID, businessId)
				if err != nil {
					status, msg := mapCatalogError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"categories": out})
			})

			pr.Delete("/v1/businesses/{businessId}/categories/{categoryId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				categoryId := chi.URLParam(r, "categoryId")
				if businessId == "" || categoryId == "" {
					Fail(w, 400, "missing businessId or categoryId")
					return
				}

				if err := d.CatalogSvc.DeleteCategory(r.Context(), au.UID, businessId, categoryId); err != nil {
					status, msg := mapCatalogError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"ok": true, "deleted": categoryId})
			})
		}

		// ===== Schedule routes =====
		if d.ScheduleSvc != nil {
			pr.Post("/v1/businesses/{businessId}/schedule", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				if businessId == "" {
					Fail(w, 400, "missing businessId")
					return
				}

				var in schedule.ScheduleInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.ScheduleSvc.Schedule(r.Context(), au.UID, businessId, in)
				if err != nil {
					status, msg := mapScheduleError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 201, out)
			})

			pr.Get("/v1/businesses/{businessId}/schedule", func(w http.ResponseWriter, r *http.Request) {
				businessId := chi.URLParam(r, "businessId")
				if businessId == "" {
					Fail(w, 400, "missing businessId")
					return
				}

				from := r.URL.Query().Get("from")
				to := r.URL.Query().Get("to")

				out, err := d.ScheduleSvc.ListRange(r.Context(), businessId, from, to)
				if err != nil {
					status, msg := mapScheduleError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"occurrences": out})
			})

			pr.Get("/v1/businesses/{businessId}/schedule/{occurrenceId}", func(w http.ResponseWriter, r *http.Request) {
				businessId := chi.URLParam(r, "businessId")
				occurrenceId := chi.URLParam(r, "occurrenceId")
				if businessId == "" || occurrenceId == "" {
					Fail(w, 400, "missing businessId or occurrenceId")
					return
				}

				out, err := d.ScheduleSvc.Get(r.Context(), businessId, occurrenceId)
				if err != nil {
					status, msg := mapScheduleError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Post("/v1/businesses/{businessId}/schedule/{occurrenceId}/cancel", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				occurrenceId := chi.URLParam(r, "occurrenceId")
				if businessId == "" || occurrenceId == "" {
					Fail(w, 400, "missing businessId or occurrenceId")
					return
				}

				var in schedule.CancelInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.ScheduleSvc.Cancel(r.Context(), au.UID, businessId, occurrenceId, in)
				if err != nil {
					status, msg := mapScheduleError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Post("/v1/businesses/{businessId}/schedule/{occurrenceId}/recount", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				occurrenceId := chi.URLParam(r, "occurrenceId")
				if businessId == "" || occurrenceId == "" {
					Fail(w, 400, "missing businessId or occurrenceId")
					return
				}

				out, err := d.ScheduleSvc.RecountBookedSpots(r.Context(), au.UID, businessId, occurrenceId)
				if err != nil {
					status, msg := mapScheduleError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Delete("/v1/businesses/{businessId}/schedule/{occurrenceId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				occurrenceId := chi.URLParam(r, "occurrenceId")
				if businessId == "" || occurrenceId == "" {
					Fail(w, 400, "missing businessId or occurrenceId")
					return
				}

				if err := d.ScheduleSvc.Delete(r.Context(), au.UID, businessId, occurrenceId); err != nil {
					status, msg := mapScheduleError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"ok": true, "deleted": occurrenceId})
			})
		}

		// ===== Booking routes =====
		if d.BookingSvc != nil {
			pr.Post("/v1/businesses/{businessId}/bookings", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				if businessId == "" {
					Fail(w, 400, "missing businessId")
					return
				}

				var in booking.BookInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.BookingSvc.Book(r.Context(), au.UID, businessId, in)
				if err != nil {
					status, msg := mapBookingError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 201, out)
			})

			pr.Post("/v1/bookings/{bookingId}/cancel", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				bookingId := chi.URLParam(r, "bookingId")
				if bookingId == "" {
					Fail(w, 400, "missing bookingId")
					return
				}

				var in struct {
					Reason string `json:"reason,omitempty"`
				}
				_ = json.NewDecoder(r.Body).Decode(&in)

				out, err := d.BookingSvc.Cancel(r.Context(), au.UID, bookingId, strings.TrimSpace(in.Reason))
				if err != nil {
					status, msg := mapBookingError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Get("/v1/businesses/{businessId}/schedule/{occurrenceId}/bookings", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				occurrenceId := chi.URLParam(r, "occurrenceId")
				if businessId == "" || occurrenceId == "" {
					Fail(w, 400, "missing businessId or occurrenceId")
					return
				}

				activeOnly := r.URL.Query().Get("activeOnly") == "true"
				out, err := d.BookingSvc.ListForOccurrence(r.Context(), au.UID, businessId, occurrenceId, activeOnly)
				if err != nil {
					status, msg := mapBookingError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"bookings": out})
			})

			pr.Get("/v1/businesses/{businessId}/bookings/mine", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				if businessId == "" {
					Fail(w, 400, "missing businessId")
					return
				}

				limit := 0
				if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
					if n, err := strconv.Atoi(limitStr); err == nil {
						limit = n
					}
				}

				out, err := d.BookingSvc.ListMine(r.Context(), au.UID, businessId, limit)
				if err != nil {
					status, msg := mapBookingError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"bookings": out})
			})
		}

		// ===== CRM client routes =====
		if d.ClientsSvc != nil {
			pr.Post("/v1/clients", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())

				var in clients.CreateClientInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.ClientsSvc.Create(r.Context(), au.UID, in)
				if err != nil {
					status, msg := mapClientsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 201, out)
			})

			pr.Get("/v1/clients", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())

				q := clients.ListQuery{
					Status: r.URL.Query().Get("status"),
					Search: r.URL.Query().Get("search"),
					Cursor: r.URL.Query().Get("cursor"),
				}
				if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
					if n, err := strconv.Atoi(limitStr); err == nil {
						q.Limit = n
					}
				}

				out, err := d.ClientsSvc.List(r.Context(), au.UID, q)
				if err != nil {
					status, msg := mapClientsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Get("/v1/clients/{clientId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				clientId := chi.URLParam(r, "clientId")
				if clientId == "" {
					Fail(w, 400, "missing clientId")
					return
				}

				out, err := d.ClientsSvc.Get(r.Context(), au.UID, clientId)
				if err != nil {
					status, msg := mapClientsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Put("/v1/clients/{clientId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				clientId := chi.URLParam(r, "clientId")
				if clientId == "" {
					Fail(w, 400, "missing clientId")
					return
				}

				var in clients.UpdateClientInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.ClientsSvc.Update(r.Context(), au.UID, clientId, in)
				if err != nil {
					status, msg := mapClientsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Delete("/v1/clients/{clientId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				clientId := chi.URLParam(r, "clientId")
				if clientId == "" {
					Fail(w, 400, "missing clientId")
					return
				}

				if err := d.ClientsSvc.Delete(r.Context(), au.UID, clientId); err != nil {
					status, msg := mapClientsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"ok": true, "deleted": clientId})
			})
		}

		// ===== CRM task routes =====
		if d.TasksSvc != nil {
			pr.Post("/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())

				var in tasks.CreateTaskInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.TasksSvc.Create(r.Context(), au.UID, in)
				if err != nil {
					status, msg := mapTasksError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 201, out)
			})

			pr.Get("/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())

				var done *bool
				switch r.URL.Query().Get("done") {
				case "true":
					v := true
					done = &v
				case "false":
					v := false
					done = &v
				}
				limit := 0
				if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
					if n, err := strconv.Atoi(limitStr); err == nil {
						limit = n
					}
				}

				out, err := d.TasksSvc.List(r.Context(), au.UID, done, limit)
				if err != nil {
					status, msg := mapTasksError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"tasks": out})
			})

			pr.Get("/v1/tasks/{taskId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				taskId := chi.URLParam(r, "taskId")
				if taskId == "" {
					Fail(w, 400, "missing taskId")
					return
				}

				out, err := d.TasksSvc.Get(r.Context(), au.UID, taskId)
				if err != nil {
					status, msg := mapTasksError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Put("/v1/tasks/{taskId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				taskId := chi.URLParam(r, "taskId")
				if taskId == "" {
					Fail(w, 400, "missing taskId")
					return
				}

				var in tasks.UpdateTaskInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}

				out, err := d.TasksSvc.Update(r.Context(), au.UID, taskId, in)
				if err != nil {
					status, msg := mapTasksError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Delete("/v1/tasks/{taskId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				taskId := chi.URLParam(r, "taskId")
				if taskId == "" {
					Fail(w, 400, "missing taskId")
					return
				}

				if err := d.TasksSvc.Delete(r.Context(), au.UID, taskId); err != nil {
					status, msg := mapTasksError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"ok": true, "deleted": taskId})
			})
		}

		// ===== Follow-up routes =====
		if d.FollowupSvc != nil {
			pr.Get("/v1/followup/settings", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				out, err := d.FollowupSvc.GetSettings(r.Context(), au.UID)
				if err != nil {
					status, msg := mapFollowupError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Put("/v1/followup/settings", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())

				var in followup.UpdateSettingsInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}

				out, err := d.FollowupSvc.UpdateSettings(r.Context(), au.UID, in)
				if err != nil {
					status, msg := mapFollowupError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Get("/v1/followup/alerts", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				out, err := d.FollowupSvc.GetAlerts(r.Context(), au.UID)
				if err != nil {
					status, msg := mapFollowupError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})
		}

		// ===== Proposal routes =====
		if d.ProposalsSvc != nil {
			pr.Post("/v1/proposals/generate", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())

				var in proposals.GenerateInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.ProposalsSvc.Generate(r.Context(), au.UID, in)
				if err != nil {
					status, msg := mapProposalsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 201, out)
			})

			pr.Get("/v1/proposals", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())

				status := r.URL.Query().Get("status")
				limit := 0
				if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
					if n, err := strconv.Atoi(limitStr); err == nil {
						limit = n
					}
				}

				out, err := d.ProposalsSvc.List(r.Context(), au.UID, status, limit)
				if err != nil {
					st, msg := mapProposalsError(err)
					Fail(w, st, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"proposals": out})
			})

			pr.Get("/v1/proposals/{proposalId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				proposalId := chi.URLParam(r, "proposalId")
				if proposalId == "" {
					Fail(w, 400, "missing proposalId")
					return
				}

				out, err := d.ProposalsSvc.Get(r.Context(), au.UID, proposalId)
				if err != nil {
					status, msg := mapProposalsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Put("/v1/proposals/{proposalId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				proposalId := chi.URLParam(r, "proposalId")
				if proposalId == "" {
					Fail(w, 400, "missing proposalId")
					return
				}

				var in proposals.UpdateInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.ProposalsSvc.Update(r.Context(), au.UID, proposalId, in)
				if err != nil {
					status, msg := mapProposalsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Delete("/v1/proposals/{proposalId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				proposalId := chi.URLParam(r, "proposalId")
				if proposalId == "" {
					Fail(w, 400, "missing proposalId")
					return
				}

				if err := d.ProposalsSvc.Delete(r.Context(), au.UID, proposalId); err != nil {
					status, msg := mapProposalsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"ok": true, "deleted": proposalId})
			})

			pr.Post("/v1/proposals/{proposalId}/send", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				proposalId := chi.URLParam(r, "proposalId")
				if proposalId == "" {
					Fail(w, 400, "missing proposalId")
					return
				}

				if d.BillingSvc != nil {
					businessId := r.URL.Query().Get("businessId")
					if err := d.BillingSvc.CheckEmailQuota(r.Context(), au.UID, businessId); err != nil {
						if billing.IsErrLimitReached(err) {
							Fail(w, 402, err.Error())
							return
						}
					}
				}

				out, err := d.ProposalsSvc.Send(r.Context(), au.UID, proposalId)
				if err != nil {
					status, msg := mapProposalsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})
		}

		// ===== Email routes =====
		if d.EmailsSvc != nil {
			pr.Post("/v1/emails", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())

				if d.BillingSvc != nil {
					businessId := r.URL.Query().Get("businessId")
					if err := d.BillingSvc.CheckEmailQuota(r.Context(), au.UID, businessId); err != nil {
						if billing.IsErrLimitReached(err) {
							Fail(w, 402, err.Error())
							return
						}
					}
				}

				var in emails.SendInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.EmailsSvc.Send(r.Context(), au.UID, in)
				if err != nil {
					status, msg := mapEmailsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 201, out)
			})

			pr.Get("/v1/emails", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())

				limit := 0
				if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
					if n, err := strconv.Atoi(limitStr); err == nil {
						limit = n
					}
				}

				out, err := d.EmailsSvc.List(r.Context(), au.UID, limit)
				if err != nil {
					status, msg := mapEmailsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"emails": out})
			})

			pr.Get("/v1/emails/{emailId}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				emailId := chi.URLParam(r, "emailId")
				if emailId == "" {
					Fail(w, 400, "missing emailId")
					return
				}

				out, err := d.EmailsSvc.Get(r.Context(), au.UID, emailId)
				if err != nil {
					status, msg := mapEmailsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})
		}

		// ===== Lead generation =====
		if d.LeadgenSvc != nil {
			pr.Post("/v1/leads/generate", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())

				var in leadgen.GenerateInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				out, err := d.LeadgenSvc.Generate(r.Context(), au.UID, in)
				if err != nil {
					status, msg := mapLeadgenError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})
		}

		// ===== Companies House lookups =====
		if d.Companies != nil && d.Companies.Enabled() {
			pr.Get("/v1/companies/search", func(w http.ResponseWriter, r *http.Request) {
				q := strings.TrimSpace(r.URL.Query().Get("q"))
				if q == "" {
					Fail(w, 400, "q is required")
					return
				}
				limit := 10
				if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
					if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= 50 {
						limit = n
					}
				}

				out, err := d.Companies.SearchCompanies(r.Context(), q, limit)
				if err != nil {
					Fail(w, 502, "company search failed: "+err.Error())
					return
				}
				WriteJSON(w, 200, map[string]any{"results": out})
			})

			pr.Get("/v1/companies/{companyNumber}", func(w http.ResponseWriter, r *http.Request) {
				number := chi.URLParam(r, "companyNumber")
				if number == "" {
					Fail(w, 400, "missing companyNumber")
					return
				}

				out, err := d.Companies.GetCompany(r.Context(), number)
				if err != nil {
					Fail(w, 502, "company lookup failed: "+err.Error())
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Get("/v1/companies/{companyNumber}/officers", func(w http.ResponseWriter, r *http.Request) {
				number := chi.URLParam(r, "companyNumber")
				if number == "" {
					Fail(w, 400, "missing companyNumber")
					return
				}

				out, err := d.Companies.GetOfficers(r.Context(), number)
				if err != nil {
					Fail(w, 502, "officer lookup failed: "+err.Error())
					return
				}
				WriteJSON(w, 200, map[string]any{"officers": out})
			})
		}

		// ===== Profile routes =====
		if d.ProfileSvc != nil {
			pr.Get("/v1/profile", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				out, err := d.ProfileSvc.GetProfile(r.Context(), au.UID)
				if err != nil {
					status, msg := mapProfileError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Put("/v1/profile", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())

				var in profile.UpdateProfileInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}

				if err := d.ProfileSvc.UpdateProfile(r.Context(), au.UID, in); err != nil {
					status, msg := mapProfileError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"ok": true})
			})

			pr.Post("/v1/admin/users/{targetUid}/deactivate", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				if !middleware.IsAdmin(au.Claims) {
					Fail(w, 403, "admin role required")
					return
				}
				targetUid := chi.URLParam(r, "targetUid")
				if targetUid == "" {
					Fail(w, 400, "missing targetUid")
					return
				}

				if err := d.ProfileSvc.DeactivateUser(r.Context(), au.UID, targetUid); err != nil {
					status, msg := mapProfileError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"ok": true})
			})

			pr.Delete("/v1/admin/users/{targetUid}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				if !middleware.IsAdmin(au.Claims) {
					Fail(w, 403, "admin role required")
					return
				}
				targetUid := chi.URLParam(r, "targetUid")
				if targetUid == "" {
					Fail(w, 400, "missing targetUid")
					return
				}

				if err := d.ProfileSvc.DeleteUser(r.Context(), au.UID, targetUid); err != nil {
					status, msg := mapProfileError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"ok": true, "deleted": targetUid})
			})
		}

		// ===== Stats routes =====
		if d.StatsSvc != nil {
			pr.Get("/v1/businesses/{businessId}/stats", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				if businessId == "" {
					Fail(w, 400, "missing businessId")
					return
				}

				out, err := d.StatsSvc.GetBusinessStats(r.Context(), businessId, au.UID)
				if err != nil {
					status, msg := mapStatsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Get("/v1/crm/stats", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				out, err := d.StatsSvc.GetCRMStats(r.Context(), au.UID)
				if err != nil {
					status, msg := mapStatsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})
		}

		// ===== Uploads =====
		if d.Uploads != nil {
			pr.Post("/v1/uploads/signed-url", d.Uploads.CreateSignedUploadURL)
			pr.Post("/v1/uploads/signed-urls", d.Uploads.CreateSignedUploadURLs)
		}

		// ===== Billing routes =====
		if d.BillingSvc != nil {
			pr.Post("/v1/billing/checkout", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())

				var in billing.CreateCheckoutInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				url, err := d.BillingSvc.CreateCheckoutSession(r.Context(), au.UID, in)
				if err != nil {
					status, msg := mapBillingError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"url": url})
			})

			pr.Post("/v1/billing/portal", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())

				var in billing.CreatePortalInput
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				in.Trim()

				url, err := d.BillingSvc.CreatePortalSession(r.Context(), au.UID, in)
				if err != nil {
					status, msg := mapBillingError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"url": url})
			})

			pr.Get("/v1/businesses/{businessId}/subscription", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				if businessId == "" {
					Fail(w, 400, "missing businessId")
					return
				}

				out, err := d.BillingSvc.GetSubscriptionInfo(r.Context(), au.UID, businessId)
				if err != nil {
					status, msg := mapBillingError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Post("/v1/businesses/{businessId}/subscription/cancel", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				if businessId == "" {
					Fail(w, 400, "missing businessId")
					return
				}

				if err := d.BillingSvc.CancelSubscription(r.Context(), au.UID, businessId); err != nil {
					status, msg := mapBillingError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"success": true})
			})

			pr.Post("/v1/businesses/{businessId}/subscription/resume", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				businessId := chi.URLParam(r, "businessId")
				if businessId == "" {
					Fail(w, 400, "missing businessId")
					return
				}

				if err := d.BillingSvc.ResumeSubscription(r.Context(), au.UID, businessId); err != nil {
					status, msg := mapBillingError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"success": true})
			})

			pr.Get("/v1/businesses/{businessId}/plan-limit/{resource}", func(w http.ResponseWriter, r *http.Request) {
				businessId := chi.URLParam(r, "businessId")
				resource := chi.URLParam(r, "resource")
				if businessId == "" || resource == "" {
					Fail(w, 400, "missing businessId or resource")
					return
				}

				err := d.BillingSvc.CheckPlanLimit(r.Context(), businessId, resource)
				if err != nil {
					if billing.IsErrLimitReached(err) {
						WriteJSON(w, 200, map[string]any{"allowed": false, "error": err.Error()})
						return
					}
					status, msg := mapBillingError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"allowed": true})
			})
		}
	})

	return r
}

func mapBusinessError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case business.IsErrUnauthorized(err):
		return 403, err.Error()
	case business.IsErrNotFound(err):
		return 404, err.Error()
	case business.IsErrDuplicate(err):
		return 409, err.Error()
	case business.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapMembersError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case members.IsErrUnauthorized(err):
		return 403, err.Error()
	case members.IsErrNotFound(err):
		return 404, err.Error()
	case members.IsErrDuplicate(err):
		return 409, err.Error()
	case members.IsErrBadStatus(err):
		return 409, err.Error()
	case members.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapCatalogError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case catalog.IsErrUnauthorized(err):
		return 403, err.Error()
	case catalog.IsErrNotFound(err):
		return 404, err.Error()
	case catalog.IsErrDuplicate(err):
		return 409, err.Error()
	case catalog.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapScheduleError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case schedule.IsErrUnauthorized(err):
		return 403, err.Error()
	case schedule.IsErrNotFound(err):
		return 404, err.Error()
	case schedule.IsErrAlreadyCancelled(err):
		return 409, err.Error()
	case schedule.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapBookingError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case booking.IsErrUnauthorized(err):
		return 403, err.Error()
	case booking.IsErrNotFound(err):
		return 404, err.Error()
	case booking.IsErrClassFull(err):
		return 409, err.Error()
	case booking.IsErrAlreadyBooked(err):
		return 409, err.Error()
	case booking.IsErrClassCancelled(err):
		return 409, err.Error()
	case booking.IsErrAlreadyCancelled(err):
		return 409, err.Error()
	case booking.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapClientsError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case clients.IsErrUnauthorized(err):
		return 403, err.Error()
	case clients.IsErrNotFound(err):
		return 404, err.Error()
	case clients.IsErrDuplicate(err):
		return 409, err.Error()
	case clients.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapTasksError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case tasks.IsErrUnauthorized(err):
		return 403, err.Error()
	case tasks.IsErrNotFound(err):
		return 404, err.Error()
	case tasks.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapFollowupError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case followup.IsErrUnauthorized(err):
		return 403, err.Error()
	case followup.IsErrNotFound(err):
		return 404, err.Error()
	case followup.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapEmailsError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case emails.IsErrUnauthorized(err):
		return 403, err.Error()
	case emails.IsErrNotFound(err):
		return 404, err.Error()
	case emails.IsErrDeliveryFailed(err):
		return 502, err.Error()
	case emails.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapProposalsError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case proposals.IsErrUnauthorized(err):
		return 403, err.Error()
	case proposals.IsErrNotFound(err):
		return 404, err.Error()
	case proposals.IsErrAlreadySent(err):
		return 409, err.Error()
	case proposals.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapLeadgenError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case leadgen.IsErrUnauthorized(err):
		return 403, err.Error()
	case leadgen.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapProfileError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case profile.IsErrUnauthorized(err):
		return 403, err.Error()
	case profile.IsErrNotFound(err):
		return 404, err.Error()
	case profile.IsErrCannotDeleteSelf(err):
		return 409, err.Error()
	case profile.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapStatsError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case stats.IsErrUnauthorized(err):
		return 403, err.Error()
	case stats.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapBillingError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case billing.IsErrUnauthorized(err):
		return 403, err.Error()
	case billing.IsErrNotFound(err):
		return 404, err.Error()
	case billing.IsErrLimitReached(err):
		return 402, err.Error()
	case billing.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}
