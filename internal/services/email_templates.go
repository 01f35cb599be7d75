package services

const generationOutcomeEmailHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #1f2937; background-color: #f5f3ff; margin: 0; padding: 20px; }
.container { padding: 20px; max-width: 600px; margin: 20px auto; background-color: #ffffff; border: 1px solid #e9d5ff; border-radius: 8px; }
.header { font-size: 24px; font-weight: bold; color: #743ee4; margin-bottom: 15px; }
.content { padding: 20px; }
.stat { font-weight: bold; }
.footer { margin-top: 20px; font-size: 12px; color: #6b7280; text-align: center; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">%s</div>
    <div class="content">
      <p>Building: <span class="stat">%s</span></p>
      <p>Floors created: <span class="stat">%d</span></p>
      <p>Units created: <span class="stat">%d</span></p>
      <p>Rolled back: <span class="stat">%t</span></p>
      <p>%s</p>
    </div>
    <div class="footer">
      Sent %s by %s.
    </div>
  </div>
</body>
</html>`
