package analysis

import (
	"fmt"

	"github.com/khoahotran/skillpath/internal/domain/profile"
)

const (
	defaultSalary   = 5000
	salaryGrowth    = 1.25
	salaryReference = "JobStreet Malaysia Salary Report 2024"
)

// SyntheticAnalysis builds a deterministic bundle from the profile alone.
// It is the answer whenever no provider result can be used.
func SyntheticAnalysis(p profile.Profile) profile.Analysis {
	title := p.Title()

	skills := p.CurrentSkills.Names()
	if len(skills) == 0 {
		skills = []string{"Core Skills"}
	}
	current := make(profile.Skills, len(skills))
	for i, s := range skills {
		current[i] = profile.RatedSkill(s, profile.LevelIntermediate, true)
	}

	salary := p.CurrentSalary
	if salary == 0 {
		salary = defaultSalary
	}

	a := profile.Analysis{
		CurrentSkills: current,
		SkillGaps: []profile.SkillGap{
			{Name: fmt.Sprintf("Advanced %s Patterns", title), Priority: profile.PriorityHigh, Impact: "+20% salary"},
			{Name: "Technical Leadership", Priority: profile.PriorityMedium, Impact: "+15% salary"},
			{Name: "Cloud Architecture", Priority: profile.PriorityMedium, Impact: "+12% salary"},
		},
		Recommendations: fmt.Sprintf("To advance as a %s, you should focus on deepening your expertise in %s "+
			"while expanding into architectural concepts. The Malaysian market is currently valuing end-to-end ownership highly.",
			title, skills[0]),
		StudyPlan: []profile.StudyPhase{
			{Phase: "Month 1", Goal: title + " Fundamentals", Steps: []string{
				"Master advanced patterns in " + skills[0],
				"Review industry best practices",
			}},
			{Phase: "Month 2", Goal: "Architecture & Scale", Steps: []string{
				"Learn system design principles",
				"Understand cloud deployment models",
			}},
			{Phase: "Month 3", Goal: "Leadership", Steps: []string{
				"Mentoring junior developers",
				"Technical strategy documentation",
			}},
		},
		RecommendedCourses: []profile.Course{
			{Title: fmt.Sprintf("Advanced %s Masterclass", title), Platform: "Udemy", Rating: 4.8, Duration: "20 hours", Type: "Course"},
			{Title: "System Design for Senior Engineers", Platform: "Coursera", Rating: 4.7, Duration: "4 weeks", Type: "Specialization"},
			{Title: "Technical Leadership", Platform: "Pluralsight", Rating: 4.9, Duration: "10 hours", Type: "Course"},
		},
		SalaryProjection: &profile.SalaryProjection{
			Current:   salary,
			Projected: salary * salaryGrowth,
			Reason:    fmt.Sprintf("Specializing in high-demand areas within %s typically commands a 25%% premium in the current market.", title),
			Reference: salaryReference,
		},
		PersonaProfileData: &profile.Persona{
			Title:  "The Strategic " + title,
			Traits: []string{"Growth-Minded", "Technical", "Problem-Solver"},
			Summary: fmt.Sprintf("You are a dedicated %s with a clear vision for growth. Your focus on bridging "+
				"technical execution with strategic understanding positions you well for senior roles.", title),
		},
	}
	return a.Normalize()
}
