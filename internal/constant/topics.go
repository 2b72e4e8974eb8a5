package constant

// TopicAssessmentRefresh is the in-process bus topic the conversation
// engine publishes refresh triggers on after a successful exchange.
const TopicAssessmentRefresh = "ASSESSMENT_REFRESH"
