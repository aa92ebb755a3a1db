// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package simulator

import (
	"strings"
	"unicode"

	"github.com/tomtom215/sentinel/internal/models"
)

// Built-in sensor keys. Alarm keys derive by suffix swap: fireSensor pairs
// with fireAlarm.
const (
	KeyFireSensor     = "fireSensor"
	KeySmokeSensor    = "smokeSensor"
	KeySecuritySensor = "securitySensor"
)

const (
	sensorSuffix = "Sensor"
	alarmSuffix  = "Alarm"
)

// builtinSensor is a statically defined sensor definition.
type builtinSensor struct {
	Key         string
	DisplayName string
	Icon        string
	Description string
}

var builtinSensors = []builtinSensor{
	{Key: KeyFireSensor, DisplayName: "Fire Sensor", Icon: "flame", Description: "Detects open flame"},
	{Key: KeySmokeSensor, DisplayName: "Smoke Sensor", Icon: "smoke", Description: "Detects smoke"},
	{Key: KeySecuritySensor, DisplayName: "Security Sensor", Icon: "shield", Description: "Detects intrusion"},
}

// AlarmKeyFor derives the paired alarm key from a sensor key.
func AlarmKeyFor(sensorKey string) string {
	return strings.TrimSuffix(sensorKey, sensorSuffix) + alarmSuffix
}

// alarmNameFor derives the alarm display name from a sensor display name.
func alarmNameFor(sensorName string) string {
	if strings.HasSuffix(sensorName, " Sensor") {
		return strings.TrimSuffix(sensorName, " Sensor") + " Alarm"
	}
	return sensorName + " Alarm"
}

// SensorKeyForName derives a store key from a custom sensor name:
// "Gas Leak" -> "gasLeakSensor".
func SensorKeyForName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(strings.ToLower(w))
			continue
		}
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String() + sensorSuffix
}

func isBuiltinKey(key string) bool {
	for _, s := range builtinSensors {
		if s.Key == key {
			return true
		}
	}
	return false
}

func builtinToSensor(b builtinSensor) models.Sensor {
	return models.Sensor{
		Key:             b.Key,
		DisplayName:     b.DisplayName,
		Icon:            b.Icon,
		Description:     b.Description,
		Custom:          false,
		LastActivatedAt: models.NeverTriggered,
	}
}

func customToSensor(c models.CustomSensor) models.Sensor {
	return models.Sensor{
		Key:             SensorKeyForName(c.Name),
		DisplayName:     c.Name,
		Icon:            c.Icon,
		Description:     c.Description,
		Custom:          true,
		LastActivatedAt: models.NeverTriggered,
	}
}
