package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrUserNotFound       = errors.New("user not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed          = errors.New("validation failed")
	ErrTournamentNameRequired    = errors.New("tournament name is required")
	ErrTournamentInvalidFormat   = errors.New("invalid tournament format")
	ErrTournamentInvalidRoster   = errors.New("invalid roster bounds")
	ErrTeamNameRequired          = errors.New("team name and manager name are required")
	ErrRegistrationNotOpen       = errors.New("tournament registration is not open")
	ErrRegistrationFull          = errors.New("tournament registration is full")
	ErrRosterFull                = errors.New("team roster is full")
	ErrJerseyNumberConflict      = errors.New("jersey number is already taken in this team")
	ErrCaptainConflict           = errors.New("team already has a captain")
	ErrViceCaptainConflict       = errors.New("team already has a vice-captain")
	ErrInvalidEventPayload       = errors.New("invalid event payload")
	ErrInvalidGoalType           = errors.New("invalid goal type")
	ErrInvalidCardColor          = errors.New("invalid card type")
	ErrTeamNotInMatch            = errors.New("team is not part of this match")
	ErrInvalidMatchStatus        = errors.New("invalid match status")
	ErrInvalidStatusTransition   = errors.New("invalid match status transition")
	ErrMatchFinalized            = errors.New("match is completed, no further events accepted")
	ErrPlayersListRequired       = errors.New("players list is required and must be non-empty")
	ErrNegativeScore             = errors.New("score values must be non-negative")
	ErrUnsupportedFormat         = errors.New("unsupported tournament format")
	ErrScheduleAlreadyGenerated  = errors.New("schedule already generated for this tournament")
	ErrTournamentDatesRequired   = errors.New("registration and start dates are required")
	ErrCrestContentTypeForbidden = errors.New("unsupported crest content type")

	// Конфликты
	ErrMatchUpdateConflict = errors.New("match was updated concurrently, please retry")
	ErrUserEmailConflict   = errors.New("email address is already in use")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
)
