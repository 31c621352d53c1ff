// Package conversation orchestrates user conversations with the external agent.
//
// The Service composes the agent gateway client and the structured payload
// extractor: it creates sessions, streams messages, and projects extracted
// detail sections into durable conversation detail records. User lookup and
// detail persistence are delegated to store interfaces.
//
// Error taxonomy at this layer:
//
//   - *ValidationError: bad caller input (empty message, missing ids)
//   - store.ErrNotFound: unknown user (wrapped)
//   - *agent.UpstreamError, *agent.TokenRefreshError: passed through from
//     the gateway for the API boundary to map
package conversation
