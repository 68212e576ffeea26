package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/config"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, err
	}
	return validate, trans, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/exam-plans", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.UserRole{domain.UserRoleAdmin})).Post("/", h.CreateExamPlan)
			r.Get("/", h.GetAllExamPlans)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.examPlan)
				r.Get("/", h.GetExamPlan)
				r.With(h.RequiredRole([]domain.UserRole{domain.UserRoleAdmin})).Patch("/", h.UpdateExamPlan)
				r.With(h.RequiredRole([]domain.UserRole{domain.UserRoleAdmin})).Delete("/", h.DeleteExamPlan)
				r.Get("/slots", h.GetExamPlanSlots)
				r.Route("/roster", func(r chi.Router) {
					r.Get("/", h.GetRoster)
					r.With(h.RequiredRole([]domain.UserRole{domain.UserRoleAdmin})).Put("/", h.ReplaceRoster)
				})
				r.Route("/assignment", func(r chi.Router) {
					r.Get("/", h.GetAssignment)
					r.Group(func(r chi.Router) {
						r.Use(h.RequiredRole([]domain.UserRole{domain.UserRoleAdmin}))
						r.Post("/", h.SubmitAssignment)
						r.Post("/generate", h.GenerateAssignment)
						r.Post("/notify", h.NotifyAssignment)
					})
				})
			})
		})
	})
}
