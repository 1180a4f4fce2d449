// ABOUTME: Test scenario data structures for RAGAS benchmarks
// ABOUTME: Each scenario is a corpus, a scripted conversation and the ground truth for its last answer

package ragas

// TestScenario represents a complete RAGAS benchmark test
type TestScenario struct {
	ID          string
	Name        string
	Description string
	Corpus      []string // documents indexed before the first question
	ChunkSize   int      // 0 uses the session default
	Overlap     int
	TopK        int // 0 uses the session default
	Turns       []ConversationTurn
	GroundTruth GroundTruth
}

// ConversationTurn represents a single question in a test conversation
type ConversationTurn struct {
	TurnNumber int
	Question   string
}

// GroundTruth defines expected outcomes for RAGAS evaluation
type GroundTruth struct {
	FinalQueryTurn      int
	ExpectedInResponse  []string // Strings that MUST appear in response
	ForbiddenInResponse []string // Strings that MUST NOT appear in response

	// Passage text that retrieval should surface for the final question
	ExpectedContextItems []string
}

// TestResult represents the outcome of a benchmark test
type TestResult struct {
	TestID             string         `json:"test_id"`
	TestName           string         `json:"test_name"`
	FaithfulnessScore  float64        `json:"faithfulness_score"`
	ContextRecallScore float64        `json:"context_recall_score"`
	OverallScore       float64        `json:"overall_score"`
	Status             string         `json:"status"` // "PASS" or "FAIL"
	Details            map[string]any `json:"details,omitempty"`
	ErrorMessage       string         `json:"error_message,omitempty"`
}

// GetTest1A returns Test 1A: single fact lookup in a short corpus
func GetTest1A() TestScenario {
	return TestScenario{
		ID:          "1a",
		Name:        "Test 1A: Single Fact Lookup",
		Description: "One short document. The answer must come from the one passage that states it.",
		Corpus: []string{
			"The sky is blue.\nGrass is green.\nSnow is white.",
		},
		ChunkSize: 20,
		TopK:      1,
		Turns: []ConversationTurn{
			{TurnNumber: 1, Question: "What color is the sky?"},
		},
		GroundTruth: GroundTruth{
			FinalQueryTurn:       1,
			ExpectedInResponse:   []string{"blue"},
			ForbiddenInResponse:  []string{"green", "white"},
			ExpectedContextItems: []string{"The sky is blue."},
		},
	}
}

// GetTest2A returns Test 2A: lookup across several documents
func GetTest2A() TestScenario {
	return TestScenario{
		ID:          "2a",
		Name:        "Test 2A: Multi-Document Retrieval",
		Description: "A policy handbook and a shipping FAQ are indexed together. The refund question must be answered from the handbook.",
		Corpus: []string{
			"Refund policy\nCustomers may return unused items within 30 days of delivery for a full refund.\nOpened software cannot be refunded.",
			"Shipping FAQ\nStandard shipping takes 5 business days.\nExpress shipping takes 2 business days and costs extra.",
		},
		ChunkSize: 120,
		Overlap:   20,
		TopK:      2,
		Turns: []ConversationTurn{
			{TurnNumber: 1, Question: "How long do I have to return an item?"},
		},
		GroundTruth: GroundTruth{
			FinalQueryTurn:       1,
			ExpectedInResponse:   []string{"30 days"},
			ForbiddenInResponse:  []string{"5 business days"},
			ExpectedContextItems: []string{"within 30 days of delivery"},
		},
	}
}

// GetTest3A returns Test 3A: a follow-up question answered after earlier turns
func GetTest3A() TestScenario {
	return TestScenario{
		ID:          "3a",
		Name:        "Test 3A: Follow-Up Question",
		Description: "Two questions in one session. The second names its topic explicitly, and the first answer is carried as history.",
		Corpus: []string{
			"Light\nLight travels in straight lines.\nWhen light passes from air into glass it bends towards the normal. This bending is called refraction.",
			"Electricity\nElectric current is the flow of charge. Current is measured in amperes using an ammeter.",
		},
		ChunkSize: 150,
		Overlap:   30,
		TopK:      2,
		Turns: []ConversationTurn{
			{TurnNumber: 1, Question: "How does light travel?"},
			{TurnNumber: 2, Question: "What is the bending of light into glass called?"},
		},
		GroundTruth: GroundTruth{
			FinalQueryTurn:       2,
			ExpectedInResponse:   []string{"refraction"},
			ForbiddenInResponse:  []string{"ammeter"},
			ExpectedContextItems: []string{"This bending is called refraction."},
		},
	}
}

// GetAllTests returns all RAGAS benchmark tests
func GetAllTests() []TestScenario {
	return []TestScenario{
		GetTest1A(),
		GetTest2A(),
		GetTest3A(),
	}
}

// GetTest returns the scenario with the given ID
func GetTest(id string) (TestScenario, bool) {
	for _, s := range GetAllTests() {
		if s.ID == id {
			return s, true
		}
	}
	return TestScenario{}, false
}
