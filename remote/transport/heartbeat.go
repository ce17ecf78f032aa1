package transport

import "go.uber.org/zap"

func (t *Transport) resetLivenessLocked() {
	t.awaitingPong = false
	t.missedPongs = 0
	t.responsive = false
	t.handshaking = false
}

func (t *Transport) startHeartbeatLocked() {
	t.stopHeartbeatLocked()
	if t.heartbeatInterval <= 0 || t.socket == nil {
		return
	}

	s := t.socket
	t.heartbeatTimer = t.clock.AfterFunc(t.heartbeatInterval, func() {
		t.loop.post(func() { t.handleHeartbeat(s) })
	})
}

func (t *Transport) stopHeartbeatLocked() {
	if t.heartbeatTimer != nil {
		t.heartbeatTimer.Stop()
		t.heartbeatTimer = nil
	}
}

// handleHeartbeat runs once per heartbeat interval while s is open. A ping
// still unanswered at the next tick counts as a miss. The first miss reports
// the device as not responding; more than pingRetries consecutive misses
// abandon the socket through the regular close path.
func (t *Transport) handleHeartbeat(s Socket) {
	t.mu.Lock()
	if t.shutdown || t.socket != s || !t.opened {
		t.mu.Unlock()
		return
	}
	if t.awaitingPong {
		t.missedPongs++
	}
	missed := t.missedPongs
	if missed > t.pingRetries {
		t.mu.Unlock()
		t.logger.Warn("heartbeat lost, forcing reconnect", zap.Int("missed", missed))
		t.handleClose(s, AbnormalCloseCode.Code, AbnormalCloseCode.Reason, false)
		return
	}
	notResponding := missed == 1
	if notResponding {
		t.responsive = false
	}
	t.awaitingPong = true
	t.startHeartbeatLocked()
	observers := t.snapshotLocked()
	t.mu.Unlock()

	if notResponding {
		t.logger.Info("not responding")
		t.notifyDisconnected(observers, "not responding")
	}
	if err := s.Ping(); err != nil {
		t.logger.Debug("ping failed", zap.Error(err))
	}
}

// handlePong records a liveness round. The first pong after the socket
// opens, or after the device stopped responding, reports it ready unless a
// strategy handshake is still pending.
func (t *Transport) handlePong(s Socket) {
	t.mu.Lock()
	if t.socket != s || !t.opened {
		t.mu.Unlock()
		return
	}
	t.awaitingPong = false
	t.missedPongs = 0
	ready := !t.responsive && !t.handshaking
	if ready {
		t.responsive = true
	}
	observers := t.snapshotLocked()
	t.mu.Unlock()

	if ready {
		t.logger.Debug("ping responding")
		t.notifyReady(observers)
	}
}
