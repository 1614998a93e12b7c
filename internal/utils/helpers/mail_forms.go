package helpers

import (
	"fmt"
	"html"
)

func BuildPasswordResetText(username, link string, ttlMinutes int) string {
	return fmt.Sprintf(`Bonjour %s,

Pour changer votre mot de passe, cliquez sur ce lien:
%s

Ce lien expire dans %d minutes.
Si vous n'avez pas fait cette requête, vous pouvez ignorer ce mail et aucun changement ne sera fait.
`, username, link, ttlMinutes)
}

func BuildPasswordResetHTML(username, link string, ttlMinutes int) string {
	return fmt.Sprintf(`
<html>
  <body style="font-family:Arial,sans-serif; background:#f9f9f9;">
    <table width="100%%" cellpadding="0" cellspacing="0" bgcolor="#f9f9f9">
      <tr>
        <td align="center" style="padding:32px 0;">
          <table width="500" bgcolor="#fff" cellpadding="24" cellspacing="0" style="border-radius:8px; box-shadow:0 1px 6px #eee;">
            <tr>
              <td>
                <h2 style="color:#2d74da; margin-top:0;">Réinitialisation du mot de passe</h2>
                <p style="font-size:16px; color:#222;">Bonjour %s,</p>
                <p style="font-size:16px; color:#222;">Pour changer votre mot de passe, cliquez sur le bouton ci-dessous. Le lien expire dans %d minutes.</p>
                <p>
                  <a href="%s" style="display:inline-block;padding:12px 24px;background:#2d74da;color:#fff;text-decoration:none;border-radius:5px;font-weight:bold;">
                    Changer le mot de passe
                  </a>
                </p>
                <hr style="margin:32px 0 16px 0; border:0; border-top:1px solid #eee;">
                <div style="font-size:12px; color:#999;">Si vous n'avez pas fait cette requête, ignorez ce mail : aucun changement ne sera fait.</div>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>
`, html.EscapeString(username), ttlMinutes, html.EscapeString(link))
}
