package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Dosada05/football-tournament-system/middleware"
	"github.com/Dosada05/football-tournament-system/models"
	"github.com/Dosada05/football-tournament-system/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	scheduleService   services.ScheduleService
	matchService      services.MatchService
}

func NewTournamentHandler(
	tournamentService services.TournamentService,
	scheduleService services.ScheduleService,
	matchService services.MatchService,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		scheduleService:   scheduleService,
		matchService:      matchService,
	}
}

type createTournamentRequest struct {
	Name              string    `json:"name"`
	Format            string    `json:"format"`
	FaceToFaceMatches string    `json:"face_to_face_matches,omitempty"`
	NumPlayers        int       `json:"num_players"`
	NumSubs           int       `json:"num_subs"`
	NumTeams          int       `json:"num_teams"`
	VenueMode         string    `json:"venue_mode"`
	Location          *string   `json:"location,omitempty"`
	RegistrationStart time.Time `json:"registration_start"`
	RegistrationClose time.Time `json:"registration_close"`
	StartDate         time.Time `json:"start_date"`
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input createTournamentRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	organizerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	tournament := &models.Tournament{
		Name:              input.Name,
		Format:            models.TournamentFormat(input.Format),
		FaceToFaceMatches: models.FaceToFaceCount(input.FaceToFaceMatches),
		NumPlayers:        input.NumPlayers,
		NumSubs:           input.NumSubs,
		NumTeams:          input.NumTeams,
		VenueMode:         models.VenueMode(input.VenueMode),
		Location:          input.Location,
		RegistrationStart: input.RegistrationStart,
		RegistrationClose: input.RegistrationClose,
		StartDate:         input.StartDate,
		OrganizerID:       organizerID,
	}

	if err := h.tournamentService.Create(r.Context(), tournament); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	tournaments, err := h.tournamentService.List(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMine возвращает турниры текущего организатора.
func (h *TournamentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	organizerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	tournaments, err := h.tournamentService.ListByOrganizer(r.Context(), organizerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	if err := h.tournamentService.Delete(r.Context(), id, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GenerateSchedule создаёт расписание матчей для турнира по его формату.
func (h *TournamentHandler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.scheduleService.GenerateSchedule(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatches возвращает расписание турнира.
func (h *TournamentHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListByTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
