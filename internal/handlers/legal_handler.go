package handlers

import (
	"github.com/gofiber/fiber/v2"
)

const legalStyle = `<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>`

type LegalHandler struct {
	appName      string
	contactEmail string
}

func NewLegalHandler(appName, contactEmail string) *LegalHandler {
	return &LegalHandler{appName: appName, contactEmail: contactEmail}
}

func (h *LegalHandler) PrivacyPolicy(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Privacy Policy - ` + h.appName + `</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
` + legalStyle + `
</head><body>
<h1>Privacy Policy</h1>
<h2>Information We Collect</h2>
<p>When you connect TikTok we receive your TikTok open ID, display name, avatar, bio, verification status and follower, following, like and video counts. When you link Discord we receive your Discord user ID and username.</p>
<h2>How We Use Your Information</h2>
<p>Your data is used solely to operate ` + h.appName + `: to show your profile and analytics on the dashboard and to repost videos according to your settings. We never sell your personal data to third parties.</p>
<h2>Data Storage</h2>
<p>OAuth tokens are stored on our servers and used only for the permissions you granted. Session cookies are encrypted.</p>
<h2>Account Deletion</h2>
<p>You can delete your account and all associated data at any time from the dashboard.</p>
<h2>Contact</h2>
<p>For questions about this policy, contact us at ` + h.contactEmail + `</p>
</body></html>`)
}

func (h *LegalHandler) TermsOfService(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Terms of Service - ` + h.appName + `</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
` + legalStyle + `
</head><body>
<h1>Terms of Service</h1>
<h2>Acceptance</h2>
<p>By using ` + h.appName + `, you agree to these terms.</p>
<h2>Your Content</h2>
<p>You are responsible for the content you repost through the service and must hold the rights to it. You must also comply with the TikTok and Discord terms of service.</p>
<h2>Third-Party Services</h2>
<p>The service depends on TikTok and Discord APIs. We are not responsible for their availability or for changes they make.</p>
<h2>Termination</h2>
<p>We may suspend accounts that violate these terms. You may stop using the service and delete your account at any time.</p>
<h2>Contact</h2>
<p>For questions, contact us at ` + h.contactEmail + `</p>
</body></html>`)
}
