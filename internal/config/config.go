package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "DAILYBUDGET_"

type Application struct {
	// Host is the public base URL, only reported in logs.
	Host     string   `koanf:"host"`
	Listen   string   `koanf:"listen"`
	Log      Log      `koanf:"log"`
	Engine   Engine   `koanf:"engine"`
	History  History  `koanf:"history"`
	Database Database `koanf:"db"`
}

type Log struct {
	// Format is "text" or "json".
	Format string `koanf:"format"`
}

type Engine struct {
	// MonthLength is "fixed" (30 days) or "calendar".
	MonthLength string `koanf:"monthlength"`
	// ReasonMode is "last" or "all".
	ReasonMode       string `koanf:"reasonmode"`
	AlgorithmVersion string `koanf:"algorithmversion"`
	MaxInsights      int    `koanf:"maxinsights"`
}

type History struct {
	Enabled         bool   `koanf:"enabled"`
	RetentionDays   int    `koanf:"retentiondays"`
	CleanupSchedule string `koanf:"cleanupschedule"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

func defaults() Application {
	return Application{
		Host:   "http://localhost:8181",
		Listen: ":8181",
		Log: Log{
			Format: "text",
		},
		Engine: Engine{
			MonthLength:      "fixed",
			ReasonMode:       "last",
			AlgorithmVersion: "2.0.0",
			MaxInsights:      4,
		},
		History: History{
			Enabled:         false,
			RetentionDays:   90,
			CleanupSchedule: "@daily",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "dailybudget",
			Pass:   "",
			Name:   "dailybudget",
			Schema: "dailybudget",
		},
	}
}

// Load reads the configuration from struct defaults, then the YAML file at path (optional),
// then DAILYBUDGET_* environment variables. Later sources win.
func Load(path string) (Application, error) {
	var k = koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
