package templates

type Experiment struct {
	ID             string
	Name           string
	Description    string
	Status         string
	TrafficPercent int
	Goal           string
	TargetMetric   string
	TotalEvents    int64
	Variants       []Variant
}

type Variant struct {
	ID          string
	Name        string
	Description string
	Weight      int
}
