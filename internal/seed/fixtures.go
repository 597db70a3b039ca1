package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"jobboard/internal/models"

	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written dataset loaded from YAML.
//
//	admins: [admin@example.com]
//	providers:
//	  - email: hr@acme.test
//	    company: Acme
//	    status: verified
//	    jobs:
//	      - title: Backend Engineer
//	        type: Full-time
//	        location: Remote
//	applicants:
//	  - email: ann@example.com
//	    name: Ann
//	    skills: [go, sql]
//	    applyTo: [Backend Engineer]
type Fixture struct {
	Admins     []string           `yaml:"admins"`
	Providers  []ProviderFixture  `yaml:"providers"`
	Applicants []ApplicantFixture `yaml:"applicants"`
}

type ProviderFixture struct {
	Email   string       `yaml:"email"`
	Company string       `yaml:"company"`
	Status  string       `yaml:"status"`
	Jobs    []JobFixture `yaml:"jobs"`
}

type JobFixture struct {
	Title        string   `yaml:"title"`
	Type         string   `yaml:"type"`
	Location     string   `yaml:"location"`
	Description  string   `yaml:"description"`
	Skills       []string `yaml:"skills"`
	DeadlineDays int      `yaml:"deadlineDays"`
}

type ApplicantFixture struct {
	Email   string   `yaml:"email"`
	Name    string   `yaml:"name"`
	Skills  []string `yaml:"skills"`
	ApplyTo []string `yaml:"applyTo"`
}

// LoadFixture reads and decodes a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFixture(data)
}

// ParseFixture decodes a YAML fixture and validates enum fields.
func ParseFixture(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	for _, p := range fx.Providers {
		if p.Email == "" {
			return nil, fmt.Errorf("provider without email")
		}
		if p.Status != "" {
			if _, ok := models.ParseVerificationStatus(p.Status); !ok {
				return nil, fmt.Errorf("provider %s: unknown status %q", p.Email, p.Status)
			}
		}
		for _, j := range p.Jobs {
			if !models.JobType(j.Type).Valid() {
				return nil, fmt.Errorf("job %q: unknown type %q", j.Title, j.Type)
			}
		}
	}
	return &fx, nil
}

// Apply writes fx to the database. Applications reference jobs by title.
func (s *Seeder) Apply(ctx context.Context, fx *Fixture) (*Summary, error) {
	sum := &Summary{}
	for _, email := range fx.Admins {
		if err := s.Admin(ctx, email); err != nil {
			return sum, fmt.Errorf("admin %s: %w", email, err)
		}
		sum.Admins++
	}

	byTitle := map[string]*models.Job{}
	for _, pf := range fx.Providers {
		status := models.VerificationPending
		if pf.Status != "" {
			status = models.VerificationStatus(pf.Status)
		}
		_, provider, err := s.factory.CreateProvider(ctx, status, func(u *models.User, p *models.Provider) {
			u.Email = pf.Email
			if pf.Company != "" {
				u.CompanyName = pf.Company
				p.CompanyName = pf.Company
			}
		})
		if err != nil {
			return sum, fmt.Errorf("provider %s: %w", pf.Email, err)
		}
		sum.Providers++

		for _, jf := range pf.Jobs {
			job, err := s.factory.CreateJob(ctx, provider, func(j *models.Job) {
				j.JobTitle = jf.Title
				j.JobType = models.JobType(jf.Type)
				if jf.Location != "" {
					j.Location = jf.Location
				}
				if jf.Description != "" {
					j.Description = jf.Description
				}
				if len(jf.Skills) > 0 {
					j.Skills = jf.Skills
				}
				if jf.DeadlineDays > 0 {
					d := time.Now().AddDate(0, 0, jf.DeadlineDays)
					j.Deadline = &d
				}
			})
			if err != nil {
				return sum, fmt.Errorf("job %q: %w", jf.Title, err)
			}
			byTitle[jf.Title] = job
			sum.Jobs++
		}
	}

	for _, af := range fx.Applicants {
		user, err := s.factory.CreateApplicant(ctx, func(u *models.User) {
			u.Email = af.Email
			if af.Name != "" {
				u.Name = af.Name
			}
			if len(af.Skills) > 0 {
				u.Skills = af.Skills
			}
		})
		if err != nil {
			return sum, fmt.Errorf("applicant %s: %w", af.Email, err)
		}
		sum.Applicants++

		for _, title := range af.ApplyTo {
			job, ok := byTitle[title]
			if !ok {
				return sum, fmt.Errorf("applicant %s: no job titled %q", af.Email, title)
			}
			if _, err := s.factory.CreateApplication(ctx, user, job, models.StatusApplied); err != nil {
				return sum, fmt.Errorf("applicant %s -> %q: %w", af.Email, title, err)
			}
			sum.Applications++
		}
	}
	return sum, nil
}
