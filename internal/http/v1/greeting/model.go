package greeting

// Message is the fixed greeting served on GET /.
const Message = "Hello World change1 for check"

// Data models the greeting response payload.
type Data struct {
	Message string `json:"message" doc:"Greeting message" example:"Hello World change1 for check"`
}

// Output is the response wrapper for the greeting endpoint.
type Output struct {
	Body Data
}
