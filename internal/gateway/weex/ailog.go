package weex

import (
	"context"

	"aegis/internal/audit"
)

const PathUploadAILog = "/capi/v2/order/uploadAiLog"

// UploadAILog posts one decision audit record. Any non-success envelope is an error.
func (c *Client) UploadAILog(ctx context.Context, rec audit.Record) error {
	raw, err := c.post(ctx, PathUploadAILog, rec)
	if err != nil {
		return err
	}
	_, err = requireSuccess(raw)
	return err
}
