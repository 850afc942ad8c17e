package handlers

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Authorization Successful</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;background:linear-gradient(135deg,#0a0a0a 0%,#1a1a1a 100%);color:#fff;min-height:100vh;display:flex;justify-content:center;align-items:center;padding:20px}
.bar{position:fixed;top:0;left:0;right:0;height:4px;background:linear-gradient(90deg,#00f2ea 0%,#ff0050 100%)}
.card{max-width:600px;width:100%;background:#1f1f1f;border-radius:24px;padding:48px 40px;text-align:center;border:1px solid rgba(255,255,255,.1)}
h1{font-size:32px;margin-bottom:12px}
.subtitle{color:#888;font-size:16px}
</style>
</head>
<body>
<div class="bar"></div>
<div class="card">
<h1>Connected Successfully!</h1>
<p class="subtitle">Redirecting to dashboard...</p>
<noscript><p><a href="{{.Dashboard}}">Continue to dashboard</a></p></noscript>
</div>
<script>setTimeout(function(){window.location.href={{.Dashboard}};},2000);</script>
</body>
</html>
`))

func renderSuccess(c *fiber.Ctx, dashboardPath string) error {
	var buf bytes.Buffer
	if err := successPage.Execute(&buf, struct{ Dashboard string }{dashboardPath}); err != nil {
		return err
	}
	return c.Type("html").Send(buf.Bytes())
}
