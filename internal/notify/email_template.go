package notify

const emailHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Subject}}</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }

    .container {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border-radius: 8px;
      border: 1px solid #e5e7eb;
      overflow: hidden;
    }

    .header {
      padding: 20px 24px;
      background: linear-gradient(135deg, #0f766e 0%, #134e4a 100%);
      color: #ffffff;
    }

    .symbols {
      font-size: 24px;
      font-weight: 700;
      letter-spacing: 0.05em;
      margin-bottom: 4px;
    }

    .title {
      font-size: 15px;
      opacity: 0.9;
    }

    .badge {
      display: inline-block;
      margin-top: 8px;
      padding: 4px 10px;
      font-size: 11px;
      font-weight: 600;
      border-radius: 4px;
      background: #f97316;
      color: #ffffff;
      text-transform: uppercase;
      letter-spacing: 0.05em;
    }

    .section {
      padding: 16px 24px;
      border-top: 1px solid #f3f4f6;
    }

    .section-title {
      font-size: 11px;
      font-weight: 700;
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.1em;
      margin-bottom: 12px;
    }

    .meta-grid {
      display: table;
      width: 100%;
      font-size: 14px;
    }

    .meta-row {
      display: table-row;
    }

    .meta-label {
      display: table-cell;
      padding: 6px 16px 6px 0;
      color: #6b7280;
      font-weight: 500;
      white-space: nowrap;
      width: 100px;
    }

    .meta-value {
      display: table-cell;
      padding: 6px 0;
      color: #111827;
    }

    .sources-list {
      display: flex;
      flex-wrap: wrap;
      gap: 6px;
      margin: 0;
      padding: 0;
      list-style: none;
    }

    .source-tag {
      display: inline-block;
      padding: 3px 10px;
      font-size: 12px;
      font-weight: 500;
      background: #e0f2fe;
      color: #0369a1;
      border-radius: 4px;
    }

    .answer-box {
      white-space: pre-wrap;
      background: #f9fafb;
      border-left: 3px solid #0f766e;
      padding: 12px 16px;
      font-size: 14px;
      color: #1f2937;
      border-radius: 0 4px 4px 0;
    }

    .footer {
      padding: 16px 24px;
      font-size: 12px;
      color: #9ca3af;
      text-align: center;
      background: #f9fafb;
      border-top: 1px solid #f3f4f6;
    }

    a {
      color: #0b3d91;
      text-decoration: none;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="symbols">{{if .Symbols}}{{range $i, $s := .Symbols}}{{if $i}}, {{end}}{{$s}}{{end}}{{else}}Stockchat{{end}}</div>
      <div class="title">{{.Question}}</div>
      {{if not .Success}}
      <span class="badge">Partial answer</span>
      {{end}}
    </div>

    <div class="section">
      <div class="section-title">Question Details</div>
      <div class="meta-grid">
        {{with date .}}
        <div class="meta-row">
          <div class="meta-label">Date</div>
          <div class="meta-value">{{.}}</div>
        </div>
        {{end}}
        <div class="meta-row">
          <div class="meta-label">Label</div>
          <div class="meta-value">{{.Label}}</div>
        </div>
        {{if .Sources}}
        <div class="meta-row">
          <div class="meta-label">Sources</div>
          <div class="meta-value">
            <div class="sources-list">
              {{range .Sources}}
              <span class="source-tag">{{.}}</span>
              {{end}}
            </div>
          </div>
        </div>
        {{end}}
      </div>
    </div>

    <div class="section">
      <div class="section-title">Answer</div>
      <div class="answer-box">{{.Answer}}</div>
    </div>

    <div class="footer">
      Generated by stockchat
    </div>
  </div>
</body>
</html>`
