package model

// Totals holds the raw aggregates read from the store in one snapshot.
type Totals struct {
	TotalSpaces    int64
	AdoptedSpaces  int64
	TotalRaised    int64
	TotalGoal      int64
	TotalAdoptions int64
	Volunteers     int64
	ByStatus       map[AdoptionStatus]int64
}

// Stats is the campaign summary returned by GET /api/stats.
type Stats struct {
	TotalSpaces         int64                    `json:"totalSpaces"`
	AdoptedSpaces       int64                    `json:"adoptedSpaces"`
	AvailableSpaces     int64                    `json:"availableSpaces"`
	TotalRaised         int64                    `json:"totalRaised"`
	TotalGoal           int64                    `json:"totalGoal"`
	ProgressPercentage  float64                  `json:"progressPercentage"`
	TotalAdoptions      int64                    `json:"totalAdoptions"`
	VolunteersAvailable int64                    `json:"volunteersAvailable"`
	StatusCounts        map[AdoptionStatus]int64 `json:"statusCounts"`
}
