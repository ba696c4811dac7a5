package mailer

import (
	"fmt"
	"html"

	"github.com/iux-juridico/invitaciones/backend/internal/confirmations"
)

// renderBody builds the HTML confirmation email: gold event header,
// confirmation details, and an attachment notice when a pass rides along.
func renderBody(msg confirmations.Message) string {
	attendance := "NO ASISTIRÉ"
	if msg.Details.Attending {
		attendance = "SÍ ASISTIRÉ"
	}

	attachmentNotice := ""
	if msg.PassImage != "" {
		attachmentNotice = `
        <div style="background:#f0f9ff;padding:15px;border-radius:8px;border-left:4px solid #3b82f6;margin:20px 0;">
            <p><strong>📎 PASE DE ACCESO ADJUNTO</strong></p>
            <p>Hemos adjuntado tu pase de acceso oficial como archivo PNG a este correo.</p>
        </div>`
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family:Arial,sans-serif;margin:0;padding:20px;background-color:#f5f5f5;">
    <div style="max-width:600px;margin:0 auto;background:white;border-radius:10px;overflow:hidden;">
        <div style="background:linear-gradient(135deg,#B8860B,#DAA520);color:white;padding:30px;text-align:center;">
            <h1>🎓 Posgrado en TIC's</h1>
            <h2>¡Confirmación de Asistencia!</h2>
        </div>
        <div style="padding:30px;">
            <p>Estimado/a <strong>%s</strong>,</p>
            <p>Hemos recibido tu confirmación de asistencia para nuestro evento del Posgrado en TIC's.</p>
            <div style="background:#f9f9f9;padding:20px;border-radius:8px;margin:20px 0;">
                <h3>📋 Datos de tu confirmación:</h3>
                <p>👤 <strong>Nombre:</strong> %s</p>
                <p>📧 <strong>Email:</strong> %s</p>
                <p>✅ <strong>Asistencia:</strong> %s</p>
                <p>👥 <strong>Acompañantes:</strong> %d</p>
                <p>📱 <strong>WhatsApp:</strong> %s</p>
                <p>🕐 <strong>Confirmado:</strong> %s</p>
            </div>%s
            <p>¡Te esperamos en este importante evento del Posgrado en TIC's!</p>
        </div>
        <div style="background:#f9f9f9;padding:20px;text-align:center;color:#666;">
            <p><small>Sistema de invitaciones desarrollado por <strong>IUX - Software Jurídico</strong></small></p>
            <p><small>Este es un mensaje automático, por favor no responder a este correo.</small></p>
        </div>
    </div>
</body>
</html>`,
		html.EscapeString(msg.GuestName),
		html.EscapeString(msg.GuestName),
		html.EscapeString(msg.Details.Email),
		attendance,
		msg.Details.Companions,
		html.EscapeString(msg.Details.Whatsapp),
		html.EscapeString(msg.Details.ConfirmedAt),
		attachmentNotice,
	)
}
