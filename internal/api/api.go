package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shanmuk27/smart-dustbin/internal/coach"
	"github.com/shanmuk27/smart-dustbin/internal/db"
	"github.com/shanmuk27/smart-dustbin/internal/identity"
	"github.com/shanmuk27/smart-dustbin/internal/repository"
	"github.com/shanmuk27/smart-dustbin/internal/status"
	"go.uber.org/zap"
)

type identityService interface {
	Create(ctx context.Context, email, password string) (*db.Account, error)
	Get(ctx context.Context, id uuid.UUID) (*db.Account, error)
	GetByEmail(ctx context.Context, email string) (*db.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userStore interface {
	CreateUser(ctx context.Context, id uuid.UUID, email string) (*db.UserRecord, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.UserRecord, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	LinkDustbin(ctx context.Context, id uuid.UUID, dustbinID string) error
	UnlinkDustbin(ctx context.Context, id uuid.UUID) error
	Leaderboard(ctx context.Context) ([]db.LeaderboardEntry, error)
}

type coachService interface {
	Advise(ctx context.Context, snap coach.PointsSnapshot, question string) (string, error)
}

type livenessSource interface {
	Snapshot() status.Snapshot
}

// API holds the stateless request handlers.
type API struct {
	identity identityService
	users    userStore
	coach    coachService
	liveness livenessSource
	logger   *zap.Logger
}

// Config wires the API's collaborators.
type Config struct {
	Identity identityService
	Users    userStore
	Coach    coachService
	Liveness livenessSource
	Logger   *zap.Logger
}

func New(cfg Config) *API {
	return &API{
		identity: cfg.Identity,
		users:    cfg.Users,
		coach:    cfg.Coach,
		liveness: cfg.Liveness,
		logger:   cfg.Logger,
	}
}

// Routes builds the HTTP surface.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/register", a.Register)
	r.Post("/login", a.Login)
	r.Get("/user/{uid}", a.GetUser)
	r.Delete("/user/{uid}", a.DeleteUser)
	r.Post("/link_dustbin", a.LinkDustbin)
	r.Post("/unlink_dustbin", a.UnlinkDustbin)
	r.Get("/leaderboard", a.Leaderboard)
	r.Get("/arduino_status", a.ArduinoStatus)
	r.Post("/ai_coach", a.AICoach)
	return r
}

func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Registration failed."})
		return
	}

	account, err := a.identity.Create(r.Context(), req.Email, req.Password)
	if errors.Is(err, identity.ErrEmailExists) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "An account with this email already exists."})
		return
	}
	if err != nil {
		a.logger.Error("failed to create account", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Registration failed."})
		return
	}

	if _, err := a.users.CreateUser(r.Context(), account.ID, account.Email); err != nil {
		a.logger.Error("failed to create user record", zap.Error(err), zap.String("uid", account.ID.String()))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Registration failed."})
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{UID: account.ID.String()})
}

// Login resolves the account by email only. The submitted password is not
// verified; see DESIGN.md.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing email."})
		return
	}

	account, err := a.identity.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, identity.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "No account found with that email."})
		return
	}
	if err != nil {
		a.logger.Error("failed to look up account", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "An unexpected error occurred."})
		return
	}

	writeJSON(w, http.StatusOK, authResponse{UID: account.ID.String()})
}

func (a *API) GetUser(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Could not retrieve user data."})
		return
	}

	record, err := a.users.GetUser(r.Context(), uid)
	if errors.Is(err, repository.ErrNotFound) {
		// The identity exists but lost its record: re-create zero state.
		account, idErr := a.identity.Get(r.Context(), uid)
		if idErr != nil {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "Could not retrieve user data."})
			return
		}
		record, err = a.users.CreateUser(r.Context(), account.ID, account.Email)
	}
	if err != nil {
		a.logger.Error("failed to load user record", zap.Error(err), zap.String("uid", uid.String()))
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Could not retrieve user data."})
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(record))
}

// DeleteUser removes the data record before the identity entry; a failure
// between the two leaves an identity whose record GetUser re-creates at
// zero state.
func (a *API) DeleteUser(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "User not found."})
		return
	}

	if err := a.users.DeleteUser(r.Context(), uid); err != nil {
		a.logger.Error("failed to delete user record", zap.Error(err), zap.String("uid", uid.String()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to delete user."})
		return
	}

	err = a.identity.Delete(r.Context(), uid)
	if errors.Is(err, identity.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "User not found."})
		return
	}
	if err != nil {
		a.logger.Error("failed to delete account", zap.Error(err), zap.String("uid", uid.String()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to delete user."})
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: fmt.Sprintf("User %s deleted successfully.", uid)})
}

func (a *API) LinkDustbin(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UID == "" || req.DustbinID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing UID or Dustbin ID."})
		return
	}
	uid, err := uuid.Parse(req.UID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing UID or Dustbin ID."})
		return
	}

	err = a.users.LinkDustbin(r.Context(), uid, req.DustbinID)
	if errors.Is(err, repository.ErrDustbinLinked) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "This dustbin is already linked to another account."})
		return
	}
	if err != nil {
		a.logger.Error("failed to link dustbin", zap.Error(err), zap.String("uid", req.UID))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "An internal error occurred while linking the dustbin."})
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (a *API) UnlinkDustbin(w http.ResponseWriter, r *http.Request) {
	var req unlinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing UID."})
		return
	}
	uid, err := uuid.Parse(req.UID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing UID."})
		return
	}

	if err := a.users.UnlinkDustbin(r.Context(), uid); err != nil {
		a.logger.Error("failed to unlink dustbin", zap.Error(err), zap.String("uid", req.UID))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to unlink dustbin."})
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (a *API) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := a.users.Leaderboard(r.Context())
	if err != nil {
		a.logger.Error("failed to load leaderboard", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Could not load leaderboard."})
		return
	}

	out := make([]leaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, leaderboardEntry{Email: entry.Email, TotalPoints: entry.TotalPoints})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) ArduinoStatus(w http.ResponseWriter, r *http.Request) {
	snap := a.liveness.Snapshot()
	resp := statusResponse{Status: string(snap.State)}
	if !snap.LastSeen.IsZero() {
		ts := snap.LastSeen.Unix()
		resp.LastSeen = &ts
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) AICoach(w http.ResponseWriter, r *http.Request) {
	var req coachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body."})
		return
	}

	snap := coach.PointsSnapshot{
		Dry:    req.UserData.Points.Dry,
		Wet:    req.UserData.Points.Wet,
		EWaste: req.UserData.Points.EWaste,
		Total:  req.UserData.Points.Total,
	}

	reply, err := a.coach.Advise(r.Context(), snap, req.UserQuery)
	if errors.Is(err, coach.ErrNotConfigured) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "AI Coach is not configured on the server."})
		return
	}
	if err != nil {
		a.logger.Error("ai coach request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to get a response from the AI coach."})
		return
	}

	writeJSON(w, http.StatusOK, coachResponse{Response: reply})
}

func toUserResponse(record *db.UserRecord) userResponse {
	return userResponse{
		Email:         record.Email,
		LinkedDustbin: record.LinkedDustbin,
		Points: pointsPayload{
			Dry:    record.Points.Dry,
			Wet:    record.Points.Wet,
			EWaste: record.Points.EWaste,
			Total:  record.Points.Total,
		},
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
