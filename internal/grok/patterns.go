package grok

// builtinPatterns is the library of named regex fragments spec §4.4
// calls "a built-in library of ~60 named patterns (numeric,
// networking, date/time, syslog, common web-log shapes)". Ported
// (not translated) from the grok-style pattern set in
// original_source/logflow/processors/grok.py's BUILTIN_PATTERNS,
// rewritten for Go's RE2 regexp engine (no lookaround, no
// backreferences).
var builtinPatterns = map[string]string{
	// Numeric
	"INT":        `[+-]?(?:[0-9]+)`,
	"BASE10NUM":  `[+-]?(?:[0-9]+(?:\.[0-9]+)?)`,
	"BASE16NUM":  `(?:0[xX])?[0-9A-Fa-f]+`,
	"NUMBER":     `%{BASE10NUM}`,
	"POSINT":     `[0-9]+`,
	"NONNEGINT":  `[0-9]+`,
	"FLOAT":      `%{BASE10NUM}`,

	// Word / data
	"WORD":        `\b\w+\b`,
	"NOTSPACE":    `\S+`,
	"SPACE":       `\s*`,
	"DATA":        `.*?`,
	"GREEDYDATA":  `.*`,
	"QUOTEDSTRING": `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`,

	// Networking
	"IPV4":     `(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)`,
	"IPV6":     `(?:[0-9A-Fa-f]{0,4}:){2,7}[0-9A-Fa-f]{0,4}`,
	"IP":       `(?:%{IPV4}|%{IPV6})`,
	"HOSTNAME": `\b(?:[0-9A-Za-z](?:[0-9A-Za-z-]{0,61}[0-9A-Za-z])?\.?)+\b`,
	"IPORHOST": `(?:%{IP}|%{HOSTNAME})`,
	"MAC":      `(?:[0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}`,
	"PORT":     `\b(?:[0-9]{1,5})\b`,

	// Paths
	"UNIXPATH": `(?:/[\w._%-]*)+`,
	"WINPATH":  `(?:[A-Za-z]:\\)(?:[^\\/:*?"<>|\r\n]+\\)*[^\\/:*?"<>|\r\n]*`,
	"PATH":     `(?:%{UNIXPATH}|%{WINPATH})`,
	"URIPROTO": `[A-Za-z][A-Za-z0-9+\-.]*`,
	"URIHOST":  `%{IPORHOST}(?::%{PORT})?`,
	"URIPATH":  `(?:/[A-Za-z0-9$.+!*'(){},~:;=@#%&_\-]*)+`,
	"URIPARAM": `\?[A-Za-z0-9$.+!*'|(){},~@#%&/=:;_?\-\[\]<>]*`,
	"URI":      `%{URIPROTO}://(?:[^@]+@)?%{URIHOST}(?:%{URIPATH})?(?:%{URIPARAM})?`,

	// Date / time
	"YEAR":        `(?:\d\d){1,2}`,
	"MONTHNUM":    `(?:0?[1-9]|1[0-2])`,
	"MONTHDAY":    `(?:0?[1-9]|[12][0-9]|3[01])`,
	"HOUR":        `(?:2[0123]|[01]?[0-9])`,
	"MINUTE":      `(?:[0-5][0-9])`,
	"SECOND":      `(?:[0-5][0-9](?:\.[0-9]+)?)`,
	"TIME":        `%{HOUR}:%{MINUTE}(?::%{SECOND})?`,
	"MONTH":       `\b(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\b`,
	"DAY":         `\b(?:Mon(?:day)?|Tue(?:sday)?|Wed(?:nesday)?|Thu(?:rsday)?|Fri(?:day)?|Sat(?:urday)?|Sun(?:day)?)\b`,
	"DATE_US":     `%{MONTHNUM}[/-]%{MONTHDAY}[/-]%{YEAR}`,
	"DATE_EU":     `%{MONTHDAY}[/.-]%{MONTHNUM}[/.-]%{YEAR}`,
	"ISO8601_TIMEZONE": `(?:Z|[+-]%{HOUR}(?::?%{MINUTE}))`,
	"TIMESTAMP_ISO8601": `%{YEAR}-%{MONTHNUM}-%{MONTHDAY}[T ]%{TIME}%{ISO8601_TIMEZONE}?`,
	"HTTPDATE":    `%{MONTHDAY}/%{MONTH}/%{YEAR}:%{TIME} %{INT}`,
	"SYSLOGTIMESTAMP": `%{MONTH} +%{MONTHDAY} %{TIME}`,

	// Syslog
	"SYSLOGFACILITY": `<%{NONNEGINT}>`,
	"SYSLOGPROG":      `%{WORD}(?:\[%{POSINT}\])?`,
	"PROG":            `%{WORD}`,
	"PID":             `%{POSINT}`,
	"SYSLOGHOST":      `%{IPORHOST}`,
	"SYSLOGBASE2":     `%{SYSLOGTIMESTAMP} (?:%{SYSLOGFACILITY} )?%{SYSLOGHOST} %{SYSLOGPROG}:`,

	// Common web log shapes
	"LOGLEVEL": `(?i)\b(?:TRACE|DEBUG|INFO|WARN(?:ING)?|ERROR|FATAL|CRITICAL)\b`,
	"COMMONAPACHELOG": `%{IPORHOST:clientip} %{NOTSPACE:ident} %{NOTSPACE:auth} \[%{HTTPDATE:timestamp}\] "(?:%{WORD:verb} %{NOTSPACE:request}(?: HTTP/%{NUMBER:httpversion})?|%{DATA:rawrequest})" %{NUMBER:response} (?:%{NUMBER:bytes}|-)`,
	"COMBINEDAPACHELOG": `%{COMMONAPACHELOG} "(?:%{DATA:referrer}|-)" "%{DATA:agent}"`,
	"EMAILLOCALPART":  `[a-zA-Z0-9._%+\-]+`,
	"EMAILADDRESS":    `%{EMAILLOCALPART}@%{HOSTNAME}`,
	"UUID":            `[A-Fa-f0-9]{8}-[A-Fa-f0-9]{4}-[A-Fa-f0-9]{4}-[A-Fa-f0-9]{4}-[A-Fa-f0-9]{12}`,

	// Kubernetes / container shapes (supplement, grounded on the
	// original's winlog-adjacent field vocabulary).
	"CONTAINERID": `[0-9a-f]{12,64}`,
}
