package bot

import (
	"fmt"
	"strings"

	"zapisnik/internal/model"
)

var statusLabels = map[string]string{
	model.StatusPending:  "на рассмотрении",
	model.StatusAccepted: "принята",
	model.StatusRejected: "отклонена",
}

// formatAppointment renders one request the way admins see it.
func formatAppointment(a *model.Appointment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Заявка #%d (%s)\n", a.ID, statusLabels[a.Status])
	fmt.Fprintf(&sb, "От: %s\n", a.User)
	fmt.Fprintf(&sb, "Когда: %s\n", a.Time)
	fmt.Fprintf(&sb, "Причина: %s\n", a.Reason)
	fmt.Fprintf(&sb, "Сообщение: %s", a.Message)
	return sb.String()
}
