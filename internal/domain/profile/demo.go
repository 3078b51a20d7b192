package profile

import (
	"strings"
	"time"

	"github.com/khoahotran/skillpath/internal/domain/course"
)

// DemoPrefix marks share IDs that resolve to the built-in demo profile.
const DemoPrefix = "mock-"

func IsDemoShareID(id string) bool {
	return strings.HasPrefix(id, DemoPrefix)
}

// DemoSnapshot is served for demo share IDs without touching any store.
func DemoSnapshot(shareID string) *Snapshot {
	p := Defaults()
	p.FullName = "John Doe"
	p.JobTitle = "Senior Software Engineer"
	p.PositionDepartment = "Engineering"
	p.IndustryType = "Technology"
	p.CompanySize = "Medium"
	p.Country = "United States"
	p.CityState = "San Francisco, CA"
	p.YearsOfExperience = 8
	p.Currency = "USD"
	p.CurrentSalary = 120000
	p.CurrentStep = StepPersona
	p.ShareID = shareID
	p.CurrentSkills = Skills{
		RatedSkill("React", LevelExpert, true),
		RatedSkill("Node.js", LevelAdvanced, true),
		RatedSkill("System Design", LevelIntermediate, true),
	}
	p.SkillGaps = []SkillGap{
		{Name: "Cloud Architecture", Priority: PriorityHigh, Impact: "+20% salary"},
		{Name: "Technical Leadership", Priority: PriorityMedium, Impact: "+15% salary"},
	}
	p.Recommendations = "Focus on cloud architecture and leading cross-team initiatives to move into a staff engineer role."
	p.StudyPlan = []StudyPhase{
		{Phase: "Month 1", Goal: "Cloud Foundations", Steps: []string{"Complete AWS Solutions Architect course", "Deploy a service end to end"}},
		{Phase: "Month 2", Goal: "Distributed Systems", Steps: []string{"Study consensus and replication", "Design a multi-region system"}},
		{Phase: "Month 3", Goal: "Leadership", Steps: []string{"Mentor two engineers", "Write a technical strategy document"}},
	}
	p.RecommendedCourses = []Course{
		{Title: "AWS Certified Solutions Architect", Platform: "Udemy", Rating: 4.7, Duration: "27 hours", Type: "Course"},
		{Title: "Software Architecture", Platform: "Coursera", Rating: 4.6, Duration: "4 weeks", Type: "Specialization"},
	}
	for i := range p.RecommendedCourses {
		c := &p.RecommendedCourses[i]
		c.URL = course.SearchURL(c.Platform, c.Title)
	}
	p.SalaryProjection = &SalaryProjection{
		Current:   120000,
		Projected: 162000,
		Reason:    "Cloud architecture and leadership skills command a premium for senior engineers.",
	}
	p.PersonaProfileData = &Persona{
		Title:   "The Strategic Builder",
		Traits:  []string{"Analytical", "Collaborative", "Growth-Minded"},
		Summary: "A seasoned engineer who pairs deep technical skill with a drive to shape product direction.",
	}

	completed := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	p.CompletedAt = &completed
	return &Snapshot{ShareID: shareID, Profile: p, CompletedAt: completed}
}
