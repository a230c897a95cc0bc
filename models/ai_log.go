package models

import (
	"time"
)

// AILog stores LLM usage logs (system monitoring purpose)
// Collection: ai_logs
type AILog struct {
	ID             string    `bson:"_id,omitempty" firestore:"-" json:"id"`
	Kind           string    `bson:"kind" firestore:"kind" json:"kind"`
	AgentID        string    `bson:"agentId" firestore:"agentId" json:"agentId"`
	ModelName      string    `bson:"modelName" firestore:"modelName" json:"modelName"`
	ModelVersion   string    `bson:"modelVersion,omitempty" firestore:"modelVersion,omitempty" json:"modelVersion,omitempty"`
	InputTokens    int64     `bson:"inputTokens" firestore:"inputTokens" json:"inputTokens"`
	OutputTokens   int64     `bson:"outputTokens" firestore:"outputTokens" json:"outputTokens"`
	TotalTokens    int64     `bson:"totalTokens" firestore:"totalTokens" json:"totalTokens"`
	DurationMs     int64     `bson:"durationMs" firestore:"durationMs" json:"durationMs"`
	ErrorMessage   string    `bson:"errorMessage,omitempty" firestore:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	InputPrompt    string    `bson:"inputPrompt" firestore:"inputPrompt" json:"inputPrompt"`
	OutputResponse string    `bson:"outputResponse" firestore:"outputResponse" json:"outputResponse"`
	RequestedAt    time.Time `bson:"requestedAt" firestore:"requestedAt" json:"requestedAt"`
	CompletedAt    time.Time `bson:"completedAt" firestore:"completedAt" json:"completedAt"`
}

const (
	AILogKindText  = "text"
	AILogKindImage = "image"
)
