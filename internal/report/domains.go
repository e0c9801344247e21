package report

import (
	"github.com/abhisek/neuroscreen/internal/assessment"
)

type framework struct {
	title string
	dsm5  string
	icd11 string
}

var frameworks = map[assessment.Domain]framework{
	assessment.DomainSocial: {
		title: "Social Interaction",
		dsm5:  "Criterion A: Persistent deficits in social communication and social interaction",
		icd11: "6A02: Persistent deficits in initiating and sustaining social interaction",
	},
	assessment.DomainCommunication: {
		title: "Communication",
		dsm5:  "Criterion A2: Deficits in nonverbal and verbal communicative behaviors",
		icd11: "6A02: Persistent deficits in social communication",
	},
	assessment.DomainBehavior: {
		title: "Restricted & Repetitive Behavior",
		dsm5:  "Criterion B: Restricted, repetitive patterns of behavior, interests, or activities",
		icd11: "6A02: Restricted, repetitive and inflexible patterns of behavior and interests",
	},
	assessment.DomainSensory: {
		title: "Sensory Processing",
		dsm5:  "Criterion B4: Hyper- or hyporeactivity to sensory input",
		icd11: "6A02: Persistent atypical sensory sensitivities",
	},
}

// sensoryNote describes the sensory domain, which is not measured.
const sensoryNote = "Sensory processing is not measured by this screening; a fixed reference score is reported."

func domainSections(a assessment.Assessment) []DomainSection {
	r := a.Analysis
	descriptions := map[assessment.Domain]string{
		assessment.DomainSocial:        r.Emotion.Description + " " + r.Gesture.Description,
		assessment.DomainCommunication: r.Voice.Description + " " + r.Emotion.Description,
		assessment.DomainBehavior:      r.Gesture.Description,
		assessment.DomainSensory:       sensoryNote,
	}

	out := make([]DomainSection, 0, len(assessment.AllDomains()))
	for _, d := range assessment.AllDomains() {
		fw := frameworks[d]
		score := a.Domains.Get(d)
		out = append(out, DomainSection{
			Domain:      d,
			Title:       fw.title,
			DSM5:        fw.dsm5,
			ICD11:       fw.icd11,
			Score:       score,
			Band:        assessment.ClassifyBand(score),
			Description: descriptions[d],
		})
	}
	return out
}
