package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	KindClient  = "client"
	KindCatalog = "catalog"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindClient:
		return clientTemplate, nil
	case KindCatalog:
		return catalogTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

// Validate loads path as the given kind and reports the first problem.
func Validate(path, kind string) error {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindClient:
		_, err := LoadClientConfig(path)
		return err
	case KindCatalog:
		_, err := LoadCatalog(path)
		return err
	default:
		return fmt.Errorf("unknown config kind: %s", kind)
	}
}

const clientTemplate = `origin = "http://localhost:8080"
dialect = "current"
catalog = "catalog.toml"
status_addr = "127.0.0.1:9180"
cors_origins = ["http://localhost:3000"]
connect_timeout = "5s"
write_timeout = "5s"
max_connect_attempts = 0
security_mode = "development"

[tls]
ca_file = ""
server_name = ""
insecure_skip_verify = false

[backoff]
initial = "250ms"
multiplier = 2.0
max = "5s"
jitter = true
`

const catalogTemplate = `[[requirements]]
category = "Sport"
required = 1

[[requirements]]
category = "Non-sport"
required = 2

[[group_pairs]]
a = "MW2"
b = "MW3"

[[courses]]
id = "1"
title = "Football"
category = "Sport"
group = "MW1"
instructor = "R. Hughes"
location = "Field A"
capacity = 24

[[courses]]
id = "2"
title = "Chess Club"
category = "Non-sport"
group = "MW1"
instructor = "L. Chen"
location = "Room 204"
capacity = 16

[[courses]]
id = "3"
title = "Swimming"
category = "Sport"
group = "MW2"
instructor = "K. Osei"
location = "Pool"
capacity = 12

[[courses]]
id = "4"
title = "Drama"
category = "Non-sport"
group = "MW3"
instructor = "P. Novak"
location = "Auditorium"

[[courses]]
id = "5"
title = "Robotics"
category = "Non-sport"
group = "TT1"
instructor = "M. Duarte"
location = "Lab 3"
capacity = 10
`
