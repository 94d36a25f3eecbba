package eventhandler

import (
	"encoding/binary"
	"errors"
	"strconv"

	"github.com/tomtom215/vigil/internal/metrics"
	"github.com/tomtom215/vigil/internal/model"
)

// execute runs one action from an event's action list, appending any
// SendData output to result. A failing action does not stop the rest of
// the list.
func (h *Handler) execute(eventID model.ItemID, action model.EventAction, result *ProcessEventResult) {
	switch action.Kind {
	case model.ActionNewScene:
		h.SceneChange(action.SceneID)
		metrics.RecordActionExecution("new_scene", nil)

	case model.ActionModifyStatus:
		h.StatusChange(action.StatusID, action.NewState)
		metrics.RecordActionExecution("modify_status", nil)

	case model.ActionCueEvent:
		h.queue.Add(action.CueDelay)
		metrics.RecordActionExecution("cue_event", nil)

	case model.ActionCancelEvent:
		h.queue.CancelAll(action.CancelEventID)
		metrics.RecordActionExecution("cancel_event", nil)

	case model.ActionSaveData:
		payload := h.resolveData(action.Data)
		h.emit(SeverityInfo, &eventID, "data: "+string(payload))
		metrics.RecordActionExecution("save_data", nil)

	case model.ActionSendData:
		payload := h.resolveData(action.Data)
		result.Broadcasts = append(result.Broadcasts, BroadcastData{EventID: eventID, Payload: payload})
		metrics.RecordActionExecution("send_data", nil)

	case model.ActionSelectEvent:
		target, ok := h.cfg.SelectEvent(action.StatusID, action.EventMap)
		if !ok {
			h.emit(SeverityWarning, &eventID, "select_event: no mapping for current status state")
			metrics.RecordActionExecution("select_event", errNoSelectMapping)
			return
		}
		h.queue.Add(model.EventDelay{EventID: target})
		metrics.RecordActionExecution("select_event", nil)

	case model.ActionCueDMX:
		h.cueDMX(eventID, action.Fade)

	case model.ActionCueMedia:
		h.cueMedia(eventID, action.MediaCue)

	case model.ActionAdjustMedia:
		h.adjustMedia(eventID, action.MediaAdjustment)
	}
}

// errNoSelectMapping marks a select_event action execution metric as
// failed when the status has no mapping entry; it is never returned to a
// caller.
var errNoSelectMapping = errors.New("select_event: no mapping for current status state")

func (h *Handler) cueDMX(eventID model.ItemID, fade model.DMXFade) {
	if err := fade.Validate(); err != nil {
		h.emit(SeverityError, &eventID, "dmx fade rejected: "+err.Error())
		metrics.RecordActionExecution("cue_dmx", err)
		return
	}
	ctx, cancel := h.ctx()
	defer cancel()

	var lastErr error
	for _, client := range h.dmx {
		if err := client.PlayFade(ctx, fade); err != nil {
			lastErr = err
			continue
		}
		if h.backup != nil {
			h.backup.BackupDMX(fade)
		}
		h.recordAudit(eventID, "cue_dmx", true, "")
		metrics.RecordActionExecution("cue_dmx", nil)
		return
	}
	if lastErr != nil {
		h.emit(SeverityError, &eventID, "dmx play_fade failed: "+lastErr.Error())
		h.recordAudit(eventID, "cue_dmx", false, lastErr.Error())
		metrics.RecordActionExecution("cue_dmx", lastErr)
	}
}

func (h *Handler) cueMedia(eventID model.ItemID, cue model.MediaCue) {
	ctx, cancel := h.ctx()
	defer cancel()

	var lastErr error
	for _, client := range h.media {
		if err := client.PlayCue(ctx, cue); err != nil {
			lastErr = err
			continue
		}
		if h.backup != nil {
			h.backup.BackupMedia(cue)
		}
		h.recordAudit(eventID, "cue_media", true, "")
		metrics.RecordActionExecution("cue_media", nil)
		return
	}
	if lastErr != nil {
		h.emit(SeverityError, &eventID, "media play_cue failed: "+lastErr.Error())
		h.recordAudit(eventID, "cue_media", false, lastErr.Error())
		metrics.RecordActionExecution("cue_media", lastErr)
	}
}

func (h *Handler) adjustMedia(eventID model.ItemID, adj model.MediaAdjustment) {
	ctx, cancel := h.ctx()
	defer cancel()

	var lastErr error
	for _, client := range h.media {
		err := client.AdjustMedia(ctx, adj)
		if err == nil {
			h.recordAudit(eventID, "adjust_media", true, "")
			metrics.RecordActionExecution("adjust_media", nil)
			return
		}
		lastErr = err
	}
	if lastErr != nil {
		h.emit(SeverityError, &eventID, "media adjust failed: "+lastErr.Error())
		h.recordAudit(eventID, "adjust_media", false, lastErr.Error())
		metrics.RecordActionExecution("adjust_media", lastErr)
	}
}

// resolveData packs a DataType into its wire form. StaticString and
// UserString use the length-prefixed, 4-bytes-per-word packing described
// by the data-packing property: one big-endian u32 holding the length,
// followed by ceil(L/4) big-endian u32 words holding the bytes.
func (h *Handler) resolveData(d model.DataType) []byte {
	switch d.Kind {
	case model.DataTimeUntil:
		remaining, ok := h.queue.Remaining(d.EventID)
		if !ok {
			return packString("0")
		}
		seconds := int64(remaining.Seconds())
		return packString(strconv.FormatInt(seconds, 10))

	case model.DataTimePassedUntil:
		remaining, ok := h.queue.Remaining(d.EventID)
		if !ok {
			return packString(strconv.FormatInt(int64(d.Total.Seconds()), 10))
		}
		passed := d.Total - remaining
		if passed < 0 {
			passed = 0
		}
		return packString(strconv.FormatInt(int64(passed.Seconds()), 10))

	case model.DataStaticString:
		return packString(d.Static)

	case model.DataUserString:
		return packString(d.User)

	default:
		return packString("")
	}
}

// packString encodes s as one big-endian u32 length word followed by
// ceil(len(s)/4) big-endian u32 words holding its bytes, zero-padded.
func packString(s string) []byte {
	b := []byte(s)
	words := (len(b) + 3) / 4
	out := make([]byte, 4+words*4)
	binary.BigEndian.PutUint32(out[0:4], uint32(len(b)))
	for i, c := range b {
		out[4+i] = c
	}
	return out
}

// packUint32 encodes v as a single big-endian word.
func packUint32(v uint32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, v)
	return out
}
