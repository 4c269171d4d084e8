package api

import (
	"errors"
	"net/http"

	"agendei/internal/database"
	"agendei/internal/service"
)

// mapError translates service/repository sentinels into the status code and
// the user-facing message of each business rule.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, database.ErrSelfBooking):
		return http.StatusBadRequest, "Provider and user are the same"
	case errors.Is(err, database.ErrNotProvider):
		return http.StatusBadRequest, "Voce pode criar agendamentos apenas com especialistas"
	case errors.Is(err, database.ErrPastDate):
		return http.StatusBadRequest, "Datas passadas nao sao permitidas"
	case errors.Is(err, database.ErrSlotTaken):
		return http.StatusBadRequest, "Agendamento indisponivel"
	case errors.Is(err, database.ErrNotOwner):
		return http.StatusUnauthorized, "Voce nao tem permissao para cancelar este agendamento"
	case errors.Is(err, database.ErrCancelWindow):
		return http.StatusBadRequest, "Voce so pode cancelar 2 horas antes do agendamento"
	case errors.Is(err, database.ErrAlreadyCanceled):
		return http.StatusBadRequest, "Agendamento ja foi cancelado"
	case errors.Is(err, database.ErrEmailTaken):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, database.ErrNotFound):
		return http.StatusBadRequest, "Registro nao encontrado"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Email ou senha incorretos"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (s *HTTPServer) respondError(w http.ResponseWriter, err error) {
	status, message := mapError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
		if s.cfg.IsDevelopment() {
			message = err.Error()
		}
	}
	writeError(w, status, message)
}
