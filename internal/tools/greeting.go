package tools

import (
	"context"
	"time"
)

// eastern is the fixed UTC-5 zone the greeting agent reports times in.
var eastern = time.FixedZone("EST", -5*60*60)

// CompanyInfo describes the user's organization and AI initiative.
type CompanyInfo struct {
	CompanyName       string   `json:"company_name"`
	Industry          string   `json:"industry"`
	Location          string   `json:"location"`
	CurrentInitiative string   `json:"current_initiative"`
	UseCases          []string `json:"use_cases"`
	TeamSize          string   `json:"team_size"`
	Goal              string   `json:"goal"`
}

// CurrentTime is the result of get_current_time.
type CurrentTime struct {
	CurrentTime string `json:"current_time"`
	Date        string `json:"date"`
	Timezone    string `json:"timezone"`
	Formatted   string `json:"formatted"`
}

// RoadmapPhase is one phase of the workshop.
type RoadmapPhase struct {
	Name    string   `json:"name"`
	Agents  []string `json:"agents"`
	Pattern string   `json:"pattern"`
}

// Roadmap is the result of get_workshop_roadmap.
type Roadmap struct {
	WorkshopTitle   string         `json:"workshop_title"`
	TotalAgents     int            `json:"total_agents"`
	Duration        string         `json:"duration"`
	Phases          []RoadmapPhase `json:"phases"`
	CurrentStep     int            `json:"current_step"`
	NextAgent       string         `json:"next_agent"`
	ProgressionFile string         `json:"progression_file"`
}

// Company returns the built-in company profile.
func Company() CompanyInfo {
	return CompanyInfo{
		CompanyName:       "Acme Corporation",
		Industry:          "Technology & Innovation",
		Location:          "San Francisco, CA",
		CurrentInitiative: "Enterprise AI Agent Platform",
		UseCases: []string{
			"Customer service automation",
			"Financial analysis & reporting",
			"Content creation pipelines",
			"Software development assistance",
		},
		TeamSize: "12 engineers, 3 product managers",
		Goal:     "Deploy production-ready AI agents for enterprise workflows",
	}
}

// TimeAt formats now in Eastern Standard Time.
func TimeAt(now time.Time) CurrentTime {
	est := now.In(eastern)
	return CurrentTime{
		CurrentTime: est.Format("03:04 PM"),
		Date:        est.Format("January 02, 2006"),
		Timezone:    "EST (Eastern Standard Time)",
		Formatted:   est.Format("Monday, January 02, 2006 at 03:04 PM") + " EST",
	}
}

// WorkshopRoadmap returns the 9-agent, 4-phase workshop progression.
func WorkshopRoadmap() Roadmap {
	return Roadmap{
		WorkshopTitle: "Building Production AI Agents with ADK + FastAPI",
		TotalAgents:   9,
		Duration:      "4 hours",
		Phases: []RoadmapPhase{
			{Name: "Phase 1: Foundation", Agents: []string{"greeting_agent"}, Pattern: "Single Agent"},
			{Name: "Phase 2: Real Workflows", Agents: []string{"customer_service", "content_pipeline", "medical_authorization"}, Pattern: "Sequential Workflows"},
			{Name: "Phase 3: Intelligent Decision-Making", Agents: []string{"financial_advisor", "brand_intelligence"}, Pattern: "Parallel + Synthesis"},
			{Name: "Phase 4: Production-Grade Systems", Agents: []string{"software_assistant", "project_management", "verified_recommendations"}, Pattern: "Complex Multi-Agent with Verification"},
		},
		CurrentStep:     1,
		NextAgent:       "customer_service",
		ProgressionFile: "workshop_progression.yaml",
	}
}

// GreetingTools returns get_company_info, get_current_time and get_workshop_roadmap.
// now supplies the clock; nil means time.Now.
func GreetingTools(now func() time.Time) []Tool {
	if now == nil {
		now = time.Now
	}
	noArgs := objectSchema(nil, nil)
	return []Tool{
		{
			Definition: definition("get_company_info",
				"Get information about the user's company and current AI initiative, including name, industry and current AI agent projects.",
				noArgs),
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				return jsonResult(Company())
			},
		},
		{
			Definition: definition("get_current_time",
				"Get the current time in the Eastern (Atlanta) timezone, including time, date, timezone and a formatted string.",
				noArgs),
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				return jsonResult(TimeAt(now()))
			},
		},
		{
			Definition: definition("get_workshop_roadmap",
				"Get the complete 9-agent workshop progression, from foundation to production-grade systems.",
				noArgs),
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				return jsonResult(WorkshopRoadmap())
			},
		},
	}
}
