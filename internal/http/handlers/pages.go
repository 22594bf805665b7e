package handlers

import (
	"net/http"
)

// PagesHandler serves the browser-facing pages. Each page is a small
// self-contained document that talks to the JSON API.
type PagesHandler struct{}

// NewPagesHandler creates the page handler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

func servePage(w http.ResponseWriter, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

// Login serves the sign-in page.
// GET /login
func (h *PagesHandler) Login(w http.ResponseWriter, r *http.Request) {
	servePage(w, loginPageHTML)
}

// Booking serves the three-step booking flow page.
// GET /book
func (h *PagesHandler) Booking(w http.ResponseWriter, r *http.Request) {
	servePage(w, bookingPageHTML)
}

// Appointments serves the appointment room page.
// GET /appointments
func (h *PagesHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	servePage(w, appointmentsPageHTML)
}

// DoctorSlots serves the doctor's availability calendar page.
// GET /doctor/slots
func (h *PagesHandler) DoctorSlots(w http.ResponseWriter, r *http.Request) {
	servePage(w, doctorSlotsPageHTML)
}

const pageStyle = `
    :root {
      color-scheme: light;
      --bg: #f3f6fa;
      --panel: #ffffff;
      --ink: #1d2733;
      --muted: #5d6b7a;
      --accent: #1d5fa7;
      --accent-dark: #123a5e;
      --border: #dbe3ec;
    }
    body {
      font-family: "Inter", system-ui, sans-serif;
      margin: 0;
      padding: 32px;
      background: var(--bg);
      color: var(--ink);
    }
    .wrap {
      max-width: 860px;
      margin: 0 auto;
      background: var(--panel);
      border: 1px solid var(--border);
      border-radius: 16px;
      padding: 24px;
      box-shadow: 0 12px 30px rgba(0,0,0,0.06);
    }
    h1 { font-size: 26px; margin: 0 0 8px; }
    p { margin: 0 0 16px; color: var(--muted); }
    label { display: block; margin: 12px 0 4px; font-size: 14px; }
    input, select {
      width: 100%;
      border: 1px solid var(--border);
      border-radius: 10px;
      padding: 10px;
      font-size: 14px;
      box-sizing: border-box;
    }
    button {
      border: none;
      border-radius: 999px;
      padding: 10px 18px;
      font-weight: 600;
      cursor: pointer;
      background: var(--accent);
      color: white;
      margin-top: 16px;
    }
    button:disabled { opacity: 0.5; cursor: not-allowed; }
    .secondary {
      background: transparent;
      color: var(--accent-dark);
      border: 1px solid var(--accent-dark);
    }
    .status { margin-top: 12px; font-size: 13px; color: var(--muted); }
    .card {
      border: 1px solid var(--border);
      border-radius: 12px;
      padding: 14px;
      margin: 10px 0;
    }
    .tabs { display: flex; gap: 8px; margin-bottom: 12px; }
`

const loginPageHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Sign In | Ubiety Sphere</title>
  <style>` + pageStyle + `</style>
</head>
<body>
  <div class="wrap">
    <h1>Sign In</h1>
    <p>Use your Ubiety Sphere account.</p>
    <label for="email">Email</label>
    <input id="email" type="email" autocomplete="username" />
    <label for="password">Password</label>
    <input id="password" type="password" autocomplete="current-password" />
    <button id="signin">Sign In</button>
    <div class="status" id="status"></div>
  </div>
  <script>
    const status = document.getElementById("status");
    if (new URLSearchParams(window.location.search).get("expired")) {
      status.textContent = "Your session expired. Please sign in again.";
    }
    document.getElementById("signin").addEventListener("click", async () => {
      status.textContent = "Signing in...";
      const resp = await fetch("/api/login", {
        method: "POST",
        headers: { "Content-Type": "application/json" },
        body: JSON.stringify({
          email: document.getElementById("email").value,
          password: document.getElementById("password").value
        })
      });
      if (!resp.ok) {
        const data = await resp.json().catch(() => ({}));
        status.textContent = data.error || "Sign in failed.";
        return;
      }
      const me = await resp.json();
      window.location.href = me.role === "Doctor" ? "/doctor/slots" : "/appointments";
    });
  </script>
</body>
</html>`

const bookingPageHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Book an Appointment | Ubiety Sphere</title>
  <style>` + pageStyle + `</style>
</head>
<body>
  <div class="wrap">
    <h1>Book an Appointment</h1>
    <p id="step">Loading...</p>
    <div id="panel"></div>
    <div class="status" id="status"></div>
  </div>
  <script>
    const step = document.getElementById("step");
    const panel = document.getElementById("panel");
    const status = document.getElementById("status");
    async function load() {
      const resp = await fetch("/api/booking");
      if (resp.status === 401) { window.location.href = "/login?expired=1"; return; }
      render(await resp.json());
    }
    function render(flow) {
      step.textContent = "Step: " + flow.state;
      if (flow.state === "payment") {
        panel.innerHTML = '<div class="card">Amount due: ' + flow.price + ' ' +
          (flow.currency || "USD") + '</div>' +
          '<button id="back" class="secondary">Back</button>';
        document.getElementById("back").addEventListener("click", async () => {
          const r = await fetch("/api/booking/back", { method: "POST" });
          render(await r.json());
        });
      } else if (flow.state === "success") {
        panel.innerHTML = '<div class="card">Your appointment is booked. A confirmation email is on its way.</div>';
      } else {
        panel.innerHTML = '<div class="card">Choose a doctor and slot, then continue to payment.</div>';
      }
    }
    load();
  </script>
</body>
</html>`

const appointmentsPageHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>My Appointments | Ubiety Sphere</title>
  <style>` + pageStyle + `</style>
</head>
<body>
  <div class="wrap">
    <h1>My Appointments</h1>
    <div class="tabs">
      <button class="secondary" data-tab="upcoming">Upcoming</button>
      <button class="secondary" data-tab="completed">Completed</button>
      <button class="secondary" data-tab="cancelled">Cancelled</button>
    </div>
    <div id="list"></div>
    <div class="status" id="status"></div>
  </div>
  <script>
    const list = document.getElementById("list");
    const status = document.getElementById("status");
    async function load(tab) {
      status.textContent = "Loading...";
      const resp = await fetch("/api/appointments?tab=" + tab);
      if (resp.status === 401) { window.location.href = "/login?expired=1"; return; }
      const data = await resp.json();
      list.innerHTML = "";
      (data.entries || []).forEach((e) => {
        const card = document.createElement("div");
        card.className = "card";
        let lines = e.appointmentDate + " " + e.startTime + " with " + (e.doctor ? e.doctor.name : "");
        if (e.refundEstimate) {
          lines += " | cancel now: " + e.refundEstimate.percentage + "% refund";
        }
        if (e.join && e.join.enabled) {
          lines += ' | <a href="' + e.googleMeetLink + '">Join</a>';
        }
        card.innerHTML = lines;
        list.appendChild(card);
      });
      status.textContent = (data.entries || []).length ? "" : "Nothing here yet.";
    }
    document.querySelectorAll("[data-tab]").forEach((btn) => {
      btn.addEventListener("click", () => load(btn.dataset.tab));
    });
    load("upcoming");
  </script>
</body>
</html>`

const doctorSlotsPageHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Availability | Ubiety Sphere</title>
  <style>` + pageStyle + `</style>
</head>
<body>
  <div class="wrap">
    <h1>Availability</h1>
    <p>Create and manage your open slots.</p>
    <div id="days"></div>
    <div class="status" id="status"></div>
  </div>
  <script>
    const days = document.getElementById("days");
    const status = document.getElementById("status");
    async function load() {
      status.textContent = "Loading...";
      const resp = await fetch("/api/doctor/slots");
      if (resp.status === 401) { window.location.href = "/login?expired=1"; return; }
      if (resp.status === 403) { status.textContent = "Doctor account required."; return; }
      const data = await resp.json();
      days.innerHTML = "";
      (data.days || []).forEach((d) => {
        const card = document.createElement("div");
        card.className = "card";
        card.textContent = d.date + ": " + d.slots.length + " slots" +
          (d.deletable ? "" : " (has bookings)");
        days.appendChild(card);
      });
      status.textContent = "";
    }
    load();
  </script>
</body>
</html>`
