package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dcode-github/capetown_discovery/backend/models"
	"github.com/dcode-github/capetown_discovery/backend/narrative"
	"github.com/dcode-github/capetown_discovery/backend/query"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxChatHistory = 20

type Recommendations struct {
	Recommendations []models.Rental              `json:"recommendations"`
	Total           int64                        `json:"total"`
	Criteria        models.RecommendationRequest `json:"criteria"`
}

type Neighborhood struct {
	Name       string      `json:"name"`
	Rentals    RentalStats `json:"rentals"`
	Healthcare []Count     `json:"healthcare"`
}

// InsightService layers narrative text over rental and facility
// aggregates. Narrative never influences what is selected or how it is
// ordered.
type InsightService struct {
	rentals    *RentalService
	facilities *FacilityService
	merger     *narrative.Merger
}

func NewInsightService(rentals *RentalService, facilities *FacilityService, merger *narrative.Merger) *InsightService {
	return &InsightService{rentals: rentals, facilities: facilities, merger: merger}
}

func (s *InsightService) Recommend(ctx context.Context, q query.RecommendationQuery) (narrative.Enriched[Recommendations], error) {
	page, err := s.rentals.Recommend(ctx, q)
	if err != nil {
		return narrative.Enriched[Recommendations]{}, err
	}
	recs := Recommendations{Recommendations: page.Items, Total: page.Total, Criteria: q.Request}
	return narrative.Merge(ctx, s.merger, recs, recommendationPrompt(recs)), nil
}

func (s *InsightService) Market(ctx context.Context) (narrative.Enriched[RentalStats], error) {
	stats, err := s.rentals.Stats(ctx, query.All())
	if err != nil {
		return narrative.Enriched[RentalStats]{}, err
	}
	return narrative.Merge(ctx, s.merger, stats, marketPrompt(stats)), nil
}

func (s *InsightService) Neighborhood(ctx context.Context, name string) (narrative.Enriched[Neighborhood], error) {
	name = strings.TrimSpace(name)
	if name == "" {
		verr := &models.ValidationError{}
		verr.Add("name", "is required")
		return narrative.Enriched[Neighborhood]{}, verr
	}

	hood := Neighborhood{Name: cases.Title(language.English).String(name)}
	err := Parallel(ctx,
		func(ctx context.Context) (err error) {
			hood.Rentals, err = s.rentals.Stats(ctx, query.Contains("location", name))
			return err
		},
		func(ctx context.Context) (err error) {
			hood.Healthcare, err = s.facilities.CountByClassification(ctx, query.Contains("town", name))
			return err
		},
	)
	if err != nil {
		return narrative.Enriched[Neighborhood]{}, err
	}
	return narrative.Merge(ctx, s.merger, hood, neighborhoodPrompt(hood)), nil
}

// Chat answers a free-form question. Only the most recent history turns are
// forwarded.
func (s *InsightService) Chat(ctx context.Context, message string, history []models.ChatMessage) (models.Narrative, error) {
	verr := &models.ValidationError{}
	if strings.TrimSpace(message) == "" {
		verr.Add("message", "is required")
	}
	for i, m := range history {
		if m.Role != "user" && m.Role != "assistant" {
			verr.Add(fmt.Sprintf("history[%d].role", i), "must be user or assistant")
		}
	}
	if err := verr.Err(); err != nil {
		return models.Narrative{}, err
	}
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}
	return s.merger.Narrate(ctx, message, history), nil
}

func recommendationPrompt(r Recommendations) string {
	var sb strings.Builder
	sb.WriteString("A renter in Cape Town is looking for a home with these criteria:\n")
	c := r.Criteria
	if c.Budget != nil {
		fmt.Fprintf(&sb, "- Budget: R%.0f per month\n", *c.Budget)
	}
	if c.Bedrooms != nil {
		fmt.Fprintf(&sb, "- Bedrooms: at least %d\n", *c.Bedrooms)
	}
	if len(c.PreferredLocations) > 0 {
		fmt.Fprintf(&sb, "- Preferred areas: %s\n", strings.Join(c.PreferredLocations, ", "))
	}
	if c.PropertyType != "" {
		fmt.Fprintf(&sb, "- Property type: %s\n", c.PropertyType)
	}
	if c.Furnished != "" {
		fmt.Fprintf(&sb, "- Furnishing: %s\n", c.Furnished)
	}
	if len(c.Features) > 0 {
		fmt.Fprintf(&sb, "- Wanted features: %s\n", strings.Join(c.Features, ", "))
	}
	fmt.Fprintf(&sb, "\n%d listings match. The best matches are:\n", r.Total)
	for i, l := range r.Recommendations {
		fmt.Fprintf(&sb, "%d. %s in %s, R%.0f, %d bed / %d bath, %s\n",
			i+1, l.Title, l.Location, l.Price, l.Bedrooms, l.Bathrooms, l.Furnished)
	}
	sb.WriteString("\nExplain briefly why these listings suit the renter and what trade-offs to consider.")
	return sb.String()
}

func marketPrompt(s RentalStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Cape Town rental market snapshot: %d listings, %d available.\n", s.Total, s.Available)
	fmt.Fprintf(&sb, "Monthly rent: average R%.0f, lowest R%.0f, highest R%.0f.\n", s.Price.Avg, s.Price.Min, s.Price.Max)
	writeCounts(&sb, "Listings by affordability category", s.ByCategory)
	writeCounts(&sb, "Listings by property type", s.ByPropertyType)
	writeCounts(&sb, "Areas with the most listings", s.TopLocations)
	sb.WriteString("\nSummarize the market conditions and give practical advice to renters.")
	return sb.String()
}

func neighborhoodPrompt(n Neighborhood) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Neighborhood: %s, Cape Town.\n", n.Name)
	fmt.Fprintf(&sb, "Rentals: %d listings, %d available, average rent R%.0f.\n",
		n.Rentals.Total, n.Rentals.Available, n.Rentals.Price.Avg)
	writeCounts(&sb, "Rentals by property type", n.Rentals.ByPropertyType)
	writeCounts(&sb, "Healthcare facilities by type", n.Healthcare)
	sb.WriteString("\nDescribe what living here is like for a renter, including access to healthcare.")
	return sb.String()
}

func writeCounts(sb *strings.Builder, title string, counts []Count) {
	if len(counts) == 0 {
		return
	}
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s (%d)", c.Value, c.Count))
	}
	fmt.Fprintf(sb, "%s: %s.\n", title, strings.Join(parts, ", "))
}
