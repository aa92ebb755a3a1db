// Sentinel - Security Panel Simulation and Audit Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package config

import (
	"fmt"
	"strings"
	"unicode"
)

// SpecialChars is the set of characters that satisfy the special-character
// requirement. Anything outside this set does not count.
const SpecialChars = "!@#$%^&*"

// PasswordPolicy defines requirements for password strength.
type PasswordPolicy struct {
	// MinLength is the minimum password length.
	MinLength int

	// MinUsernameLength is the minimum username length.
	MinUsernameLength int

	RequireUppercase bool
	RequireLowercase bool
	RequireDigit     bool
	RequireSpecial   bool
}

// DefaultPasswordPolicy returns the registration policy enforced for all
// accounts.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:         16,
		MinUsernameLength: 5,
		RequireUppercase:  true,
		RequireLowercase:  true,
		RequireDigit:      true,
		RequireSpecial:    true,
	}
}

// charClasses holds the results of character class analysis.
type charClasses struct {
	hasUpper   bool
	hasLower   bool
	hasDigit   bool
	hasSpecial bool
}

func analyzeCharClasses(password string) charClasses {
	var cc charClasses
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			cc.hasUpper = true
		case unicode.IsLower(r):
			cc.hasLower = true
		case unicode.IsDigit(r):
			cc.hasDigit = true
		case strings.ContainsRune(SpecialChars, r):
			cc.hasSpecial = true
		}
	}
	return cc
}

// ValidateUsername checks a candidate username against the policy. The
// caller is expected to normalize the name first.
func (p PasswordPolicy) ValidateUsername(username string) []string {
	var errs []string
	if len(username) < p.MinUsernameLength {
		errs = append(errs, fmt.Sprintf("Username must be at least %d characters long.", p.MinUsernameLength))
	}
	return errs
}

// ValidatePassword checks a candidate password and returns every unmet
// requirement. All checks run so the caller can report the full list.
func (p PasswordPolicy) ValidatePassword(password string) []string {
	var errs []string

	if len(password) < p.MinLength {
		errs = append(errs, fmt.Sprintf("Password must be at least %d characters long.", p.MinLength))
	}

	cc := analyzeCharClasses(password)
	if p.RequireUppercase && !cc.hasUpper {
		errs = append(errs, "Password must contain at least one uppercase letter.")
	}
	if p.RequireLowercase && !cc.hasLower {
		errs = append(errs, "Password must contain at least one lowercase letter.")
	}
	if p.RequireDigit && !cc.hasDigit {
		errs = append(errs, "Password must contain at least one number.")
	}
	if p.RequireSpecial && !cc.hasSpecial {
		errs = append(errs, "Password must contain at least one special character.")
	}

	return errs
}
